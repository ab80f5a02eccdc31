package parser

import (
	"strings"

	"github.com/panbanda/codemetrics/pkg/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// lowerer converts one tree-sitter tree into the language-neutral model.
type lowerer struct {
	source []byte
	front  *frontEnd
}

// types collects the type declarations of a file in preorder. Nested types
// follow their enclosing type.
func (l *lowerer) types(root *sitter.Node) []syntax.TypeDecl {
	if l.front.topLevelUnits {
		return l.goTypes(root)
	}
	var out []syntax.TypeDecl
	l.collectTypes(root, &out)
	return out
}

func (l *lowerer) collectTypes(node *sitter.Node, out *[]syntax.TypeDecl) {
	if node == nil {
		return
	}
	if !l.front.typeDecls[node.Type()] {
		for i := range int(node.NamedChildCount()) {
			l.collectTypes(node.NamedChild(i), out)
		}
		return
	}

	idx := len(*out)
	*out = append(*out, syntax.TypeDecl{
		Name: GetNodeText(node.ChildByFieldName("name"), l.source),
	})

	var nested []*sitter.Node
	for _, member := range l.members(node.ChildByFieldName("body")) {
		kind, ok := l.front.units[member.Type()]
		if !ok {
			nested = append(nested, member)
			continue
		}
		unit := l.unit(member, kind)
		if kind == syntax.UnitMethod {
			(*out)[idx].Methods = append((*out)[idx].Methods, unit)
		} else {
			(*out)[idx].Constructors = append((*out)[idx].Constructors, unit)
		}
	}
	for _, n := range nested {
		l.collectTypes(n, out)
	}
}

// members returns the direct member declarations of a type body. Enum
// bodies keep their members one level down.
func (l *lowerer) members(body *sitter.Node) []*sitter.Node {
	if body == nil {
		return nil
	}
	var out []*sitter.Node
	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		if child.Type() == "enum_body_declarations" {
			out = append(out, l.members(child)...)
			continue
		}
		out = append(out, child)
	}
	return out
}

// goTypes groups Go functions by receiver type. Package-level functions
// share one unnamed TypeDecl. Types appear in order of their first method.
func (l *lowerer) goTypes(root *sitter.Node) []syntax.TypeDecl {
	var out []syntax.TypeDecl
	index := make(map[string]int)

	for i := range int(root.NamedChildCount()) {
		decl := root.NamedChild(i)
		kind, ok := l.front.units[decl.Type()]
		if !ok {
			continue
		}
		owner := ""
		if kind == syntax.UnitMethod {
			owner = l.receiverType(decl.ChildByFieldName("receiver"))
		}
		idx, seen := index[owner]
		if !seen {
			idx = len(out)
			index[owner] = idx
			out = append(out, syntax.TypeDecl{Name: owner})
		}
		out[idx].Methods = append(out[idx].Methods, l.unit(decl, kind))
	}
	return out
}

// receiverType returns the base type name of a method receiver, stripping
// pointers and type arguments.
func (l *lowerer) receiverType(receiver *sitter.Node) string {
	var name string
	var find func(n *sitter.Node)
	find = func(n *sitter.Node) {
		if n == nil || name != "" {
			return
		}
		if n.Type() == "type_identifier" {
			name = GetNodeText(n, l.source)
			return
		}
		for i := range int(n.NamedChildCount()) {
			find(n.NamedChild(i))
		}
	}
	find(receiver)
	return name
}

func (l *lowerer) unit(decl *sitter.Node, kind syntax.UnitKind) syntax.Unit {
	start, end := Lines(decl)
	u := syntax.Unit{
		Name:      GetNodeText(decl.ChildByFieldName("name"), l.source),
		Kind:      kind,
		Signature: l.signature(decl),
		HasRange:  true,
		StartLine: start,
		EndLine:   end,
	}
	if body := l.body(decl); body != nil {
		u.Body = l.lower(body)
	}
	return u
}

func (l *lowerer) body(decl *sitter.Node) *sitter.Node {
	if body := decl.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := range int(decl.NamedChildCount()) {
		child := decl.NamedChild(i)
		if child.Type() == "arrow_expression_clause" {
			return child
		}
	}
	return nil
}

// signature renders a declaration header: every child before the body,
// minus modifiers, annotations and throws clauses, with whitespace
// collapsed. Parameter lists attach to the name without a space.
func (l *lowerer) signature(decl *sitter.Node) string {
	if l.front.paramTypesOnly {
		return l.typedSignature(decl)
	}
	name := decl.ChildByFieldName("name")
	var b strings.Builder
	prevType := ""
	var prev *sitter.Node

	for i := range int(decl.ChildCount()) {
		child := decl.Child(i)
		if child == nil || l.front.signatureSkip[child.Type()] {
			continue
		}
		if child.Type() == "arrow_expression_clause" {
			break
		}
		text := collapseSpace(GetNodeText(child, l.source))
		if text == "" {
			continue
		}
		if b.Len() > 0 && !l.tight(child, prev, prevType, name) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prev = child
		prevType = child.Type()
	}
	return b.String()
}

// typedSignature renders the return type, the name and the parameter types.
// Varargs keep their "..." suffix. Compact constructors have no parameter
// list and render as the bare name.
func (l *lowerer) typedSignature(decl *sitter.Node) string {
	var b strings.Builder
	if ret := decl.ChildByFieldName("type"); ret != nil {
		b.WriteString(l.typeText(ret, decl.ChildByFieldName("dimensions")))
		b.WriteByte(' ')
	}
	b.WriteString(GetNodeText(decl.ChildByFieldName("name"), l.source))

	params := decl.ChildByFieldName("parameters")
	if params == nil {
		return b.String()
	}
	var types []string
	for i := range int(params.NamedChildCount()) {
		param := params.NamedChild(i)
		switch param.Type() {
		case "formal_parameter":
			types = append(types, l.typeText(param.ChildByFieldName("type"), param.ChildByFieldName("dimensions")))
		case "spread_parameter":
			for j := range int(param.NamedChildCount()) {
				child := param.NamedChild(j)
				if child.Type() != "modifiers" && child.Type() != "variable_declarator" {
					types = append(types, collapseSpace(GetNodeText(child, l.source))+"...")
					break
				}
			}
		}
	}
	b.WriteByte('(')
	b.WriteString(strings.Join(types, ", "))
	b.WriteByte(')')
	return b.String()
}

// typeText renders a type with any array dimensions declared apart from it.
func (l *lowerer) typeText(typ, dims *sitter.Node) string {
	text := collapseSpace(GetNodeText(typ, l.source))
	if dims != nil {
		text += strings.ReplaceAll(GetNodeText(dims, l.source), " ", "")
	}
	return text
}

func (l *lowerer) tight(child, prev *sitter.Node, prevType string, name *sitter.Node) bool {
	if !l.front.tightBefore[child.Type()] || prev == nil {
		return false
	}
	if name != nil && prev.StartByte() == name.StartByte() && prev.EndByte() == name.EndByte() {
		return true
	}
	return strings.HasSuffix(prevType, "type_parameter_list") || prevType == "type_parameters"
}

// lower converts a subtree, keeping named nodes only. Binary expressions
// carry their operator token in Op.
func (l *lowerer) lower(node *sitter.Node) *syntax.Node {
	start, end := Lines(node)
	n := &syntax.Node{
		Kind:      l.front.kinds[node.Type()],
		Type:      node.Type(),
		StartLine: start,
		EndLine:   end,
	}
	if n.Kind == syntax.KindBinary {
		n.Op = operator(node)
	}
	count := int(node.NamedChildCount())
	if count > 0 {
		n.Children = make([]*syntax.Node, 0, count)
	}
	for i := range count {
		n.Children = append(n.Children, l.lower(node.NamedChild(i)))
	}
	return n
}

// operator returns the operator token of a binary expression.
func operator(node *sitter.Node) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child != nil && !child.IsNamed() {
			return child.Type()
		}
	}
	return ""
}
