// Package syntax defines the language-neutral syntax tree consumed by the
// metrics engine.
//
// Front ends (see pkg/parser) lower a concrete syntax tree into this form.
// Every node carries an explicit Kind tag; kind-specific payload lives in
// dedicated fields (Op for binary operators). Analyzers dispatch on Kind
// instead of on grammar node names, so they never depend on a particular
// parser.
package syntax

// Kind tags a syntax node with the construct it represents.
type Kind uint8

const (
	KindOther Kind = iota
	KindBlock
	KindIf
	KindFor
	KindForEach
	KindWhile
	KindDo
	KindSwitch
	KindSwitchExpr
	KindCatch
	KindTernary
	KindBinary
	KindLambda
)

var kindNames = [...]string{
	KindOther:      "other",
	KindBlock:      "block",
	KindIf:         "if",
	KindFor:        "for",
	KindForEach:    "foreach",
	KindWhile:      "while",
	KindDo:         "do",
	KindSwitch:     "switch",
	KindSwitchExpr: "switch_expr",
	KindCatch:      "catch",
	KindTernary:    "ternary",
	KindBinary:     "binary",
	KindLambda:     "lambda",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is a single node of the lowered syntax tree.
type Node struct {
	Kind Kind
	// Type is the grammar node type the node was lowered from, kept for
	// diagnostics only.
	Type string
	// Op is the operator token of a KindBinary node.
	Op        string
	StartLine int
	EndLine   int
	Children  []*Node
}

// Walk visits n and all of its descendants in preorder.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) { total++ })
	return total
}

// UnitKind distinguishes functions from constructors.
type UnitKind string

const (
	UnitFunction    UnitKind = "function"
	UnitMethod      UnitKind = "method"
	UnitConstructor UnitKind = "constructor"
	UnitDestructor  UnitKind = "destructor"
)

// String implements fmt.Stringer.
func (k UnitKind) String() string { return string(k) }

// Unit is a function, method or constructor declaration.
type Unit struct {
	Name string
	Kind UnitKind
	// Signature is the declaration rendered without modifiers, annotations
	// or throws clauses, whitespace collapsed, not truncated.
	Signature string
	// HasRange reports whether StartLine/EndLine carry real positions.
	HasRange  bool
	StartLine int
	EndLine   int
	// Body is nil for abstract, interface and extern members.
	Body *Node
}

// TypeDecl is a type declaration and the units it directly declares.
// Go files use an unnamed TypeDecl for package-level functions.
type TypeDecl struct {
	Name         string
	Methods      []Unit
	Constructors []Unit
}

// Units returns the declared units, methods first and constructors after.
func (t TypeDecl) Units() []Unit {
	units := make([]Unit, 0, len(t.Methods)+len(t.Constructors))
	units = append(units, t.Methods...)
	units = append(units, t.Constructors...)
	return units
}

// File is a parsed source file.
type File struct {
	Path     string
	Language string
	Types    []TypeDecl
}

// Units returns every unit in the file in type order.
func (f *File) Units() []Unit {
	var units []Unit
	for _, t := range f.Types {
		units = append(units, t.Units()...)
	}
	return units
}
