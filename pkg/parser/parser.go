package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/panbanda/codemetrics/pkg/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo      Language = "go"
	LangJava    Language = "java"
	LangCSharp  Language = "csharp"
	LangUnknown Language = "unknown"
)

// String implements fmt.Stringer.
func (l Language) String() string { return string(l) }

var (
	// ErrSyntax is returned when the source contains syntax errors.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupportedLanguage is returned for files no front end can parse.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Parser lowers tree-sitter trees into syntax.File values. It reuses one
// tree-sitter parser and must not be shared between goroutines.
type Parser struct {
	ts *sitter.Parser
}

// New creates a parser. Callers must Close it when done.
func New() *Parser {
	return &Parser{ts: sitter.NewParser()}
}

// Close frees the tree-sitter parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// Parse parses source code with a specified language.
// Input that tree-sitter can only recover from with ERROR or MISSING nodes
// is rejected with ErrSyntax.
func (p *Parser) Parse(source []byte, lang Language, path string) (*syntax.File, error) {
	front, ok := frontEnds[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	p.ts.SetLanguage(front.language())
	tree, err := p.ts.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: empty tree", ErrSyntax, path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s: line %d", ErrSyntax, path, firstErrorLine(root))
	}

	l := &lowerer{source: source, front: front}
	return &syntax.File{
		Path:     path,
		Language: string(lang),
		Types:    l.types(root),
	}, nil
}

// DetectLanguage maps a file extension to its Language.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo
	case ".java":
		return LangJava
	case ".cs":
		return LangCSharp
	default:
		return LangUnknown
	}
}

// GetNodeText returns the source text spanned by node, or "" for a nil
// node or offsets outside source.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING
// node in preorder, or 0 if none is found.
func firstErrorLine(node *sitter.Node) int {
	if node.IsError() || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return 0
}

// Lines returns the 1-based start and end line of a node.
func Lines(node *sitter.Node) (int, int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}

// collapseSpace joins whitespace-separated fields with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
