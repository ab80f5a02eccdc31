package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkPreorder(t *testing.T) {
	tree := &Node{Kind: KindBlock, Children: []*Node{
		{Kind: KindIf, Children: []*Node{{Kind: KindBinary, Op: "&&"}}},
		{Kind: KindWhile},
	}}

	var kinds []Kind
	Walk(tree, func(n *Node) { kinds = append(kinds, n.Kind) })

	assert.Equal(t, []Kind{KindBlock, KindIf, KindBinary, KindWhile}, kinds)
	assert.Equal(t, 4, Count(tree))
}

func TestWalkNil(t *testing.T) {
	called := false
	Walk(nil, func(*Node) { called = true })
	assert.False(t, called)
	assert.Equal(t, 0, Count(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "if", KindIf.String())
	assert.Equal(t, "switch_expr", KindSwitchExpr.String())
	assert.Equal(t, "unknown", Kind(200).String())
}

func TestFileUnitsOrder(t *testing.T) {
	f := &File{Types: []TypeDecl{
		{
			Name:         "A",
			Methods:      []Unit{{Name: "a1"}, {Name: "a2"}},
			Constructors: []Unit{{Name: "A"}},
		},
		{Name: "B", Methods: []Unit{{Name: "b1"}}},
	}}

	var names []string
	for _, u := range f.Units() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"a1", "a2", "A", "b1"}, names)
}
