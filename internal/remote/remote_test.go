package remote

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/panbanda/codemetrics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LocalPath(t *testing.T) {
	src, err := Parse(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, src, "an existing path is never remote")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{"simple owner/repo", "facebook/react", "https://github.com/facebook/react", ""},
		{"with ref suffix", "facebook/react@v18.2.0", "https://github.com/facebook/react", "v18.2.0"},
		{"with branch ref", "owner/repo@feature-branch", "https://github.com/owner/repo", "feature-branch"},
		{"host without scheme", "github.com/golang/go", "https://github.com/golang/go", ""},
		{"host with ref", "github.com/golang/go@go1.21.0", "https://github.com/golang/go", "go1.21.0"},
		{"https URL", "https://gitlab.com/group/project", "https://gitlab.com/group/project", ""},
		{"SSH URL", "git@github.com:owner/repo.git", "git@github.com:owner/repo.git", ""},
		{"SSH URL with ref", "git@github.com:owner/repo.git@main", "git@github.com:owner/repo.git", "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			require.NoError(t, err)
			require.NotNil(t, src)
			assert.Equal(t, tt.wantURL, src.URL)
			assert.Equal(t, tt.wantRef, src.Ref)
		})
	}
}

func TestParse_NotRemote(t *testing.T) {
	for _, input := range []string{"missing", "./a/b", "/abs/missing/dir", "a/b/c"} {
		src, err := Parse(input)
		assert.NoError(t, err, input)
		assert.Nil(t, src, input)
	}

	_, err := Parse("owner/repo@")
	assert.ErrorContains(t, err, "empty ref")
}

func TestSource_NameAndRevision(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/facebook/react", "react"},
		{"https://github.com/facebook/react/", "react"},
		{"git@github.com:owner/repo.git", "repo"},
		{"/tmp/local/project", "project"},
		{"", "repo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&Source{URL: tt.url}).Name(), tt.url)
	}

	assert.Equal(t, "HEAD", (&Source{}).Revision())
	assert.Equal(t, "v1", (&Source{Ref: "v1"}).Revision())
}

func TestSource_Clone(t *testing.T) {
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack not available for local clones")
	}

	root := filepath.Join(t.TempDir(), "upstream")
	origin := testutil.InitRepo(t, root, map[string]string{"A.java": "class A {}"})
	head, err := origin.Head()
	require.NoError(t, err)

	src := &Source{URL: root}
	require.NoError(t, src.Clone(context.Background(), io.Discard, false))
	dir := src.CloneDir
	assert.Equal(t, "upstream", filepath.Base(dir))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	cloned, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, head.Hash(), cloned.Hash())

	_, err = os.Stat(filepath.Join(dir, "A.java"))
	assert.True(t, os.IsNotExist(err), "clones are not checked out")

	require.NoError(t, src.Cleanup())
	assert.Empty(t, src.CloneDir)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, src.Cleanup())
}

func TestSource_CloneFailure(t *testing.T) {
	src := &Source{URL: filepath.Join(t.TempDir(), "no-such-repo")}
	err := src.Clone(context.Background(), io.Discard, true)
	assert.Error(t, err)
	assert.Empty(t, src.CloneDir)
}
