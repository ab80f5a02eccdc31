package parser

import (
	"github.com/panbanda/codemetrics/pkg/syntax"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
)

// frontEnd holds the grammar-specific tables used to lower one language.
type frontEnd struct {
	language func() *sitter.Language

	// kinds maps grammar node types to syntax kinds. Unlisted types lower
	// to syntax.KindOther.
	kinds map[string]syntax.Kind

	// typeDecls are node types that declare a named type with members.
	typeDecls map[string]bool

	// units maps unit declaration node types to their unit kind.
	units map[string]syntax.UnitKind

	// signatureSkip lists child node types dropped from rendered
	// signatures (modifiers, annotations, throws clauses, bodies).
	signatureSkip map[string]bool

	// tightBefore lists child node types rendered without a leading
	// space when they follow the unit name.
	tightBefore map[string]bool

	// paramTypesOnly renders signatures as "type name(T1, T2)": parameter
	// names and type parameter lists are dropped.
	paramTypesOnly bool

	// topLevelUnits is set for languages whose functions live outside
	// type declarations.
	topLevelUnits bool
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

var frontEnds = map[Language]*frontEnd{
	LangJava: {
		language: java.GetLanguage,
		kinds: map[string]syntax.Kind{
			"block":                  syntax.KindBlock,
			"constructor_body":       syntax.KindBlock,
			"if_statement":           syntax.KindIf,
			"for_statement":          syntax.KindFor,
			"enhanced_for_statement": syntax.KindForEach,
			"while_statement":        syntax.KindWhile,
			"do_statement":           syntax.KindDo,
			"switch_statement":       syntax.KindSwitch,
			"switch_expression":      syntax.KindSwitchExpr,
			"catch_clause":           syntax.KindCatch,
			"ternary_expression":     syntax.KindTernary,
			"binary_expression":      syntax.KindBinary,
			"lambda_expression":      syntax.KindLambda,
		},
		typeDecls: set("class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration"),
		units: map[string]syntax.UnitKind{
			"method_declaration":              syntax.UnitMethod,
			"constructor_declaration":         syntax.UnitConstructor,
			"compact_constructor_declaration": syntax.UnitConstructor,
		},
		paramTypesOnly: true,
	},
	LangCSharp: {
		language: csharp.GetLanguage,
		kinds: map[string]syntax.Kind{
			"block":                       syntax.KindBlock,
			"if_statement":                syntax.KindIf,
			"for_statement":               syntax.KindFor,
			"for_each_statement":          syntax.KindForEach,
			"foreach_statement":           syntax.KindForEach,
			"while_statement":             syntax.KindWhile,
			"do_statement":                syntax.KindDo,
			"switch_statement":            syntax.KindSwitch,
			"switch_expression":           syntax.KindSwitchExpr,
			"catch_clause":                syntax.KindCatch,
			"conditional_expression":      syntax.KindTernary,
			"binary_expression":           syntax.KindBinary,
			"lambda_expression":           syntax.KindLambda,
			"anonymous_method_expression": syntax.KindLambda,
		},
		typeDecls: set("class_declaration", "struct_declaration", "interface_declaration",
			"record_declaration", "record_struct_declaration", "enum_declaration"),
		units: map[string]syntax.UnitKind{
			"method_declaration":      syntax.UnitMethod,
			"constructor_declaration": syntax.UnitConstructor,
			"destructor_declaration":  syntax.UnitDestructor,
		},
		signatureSkip: set("modifier", "attribute_list", "block", "arrow_expression_clause",
			"constructor_initializer", "type_parameter_constraints_clause", ";"),
		tightBefore: set("parameter_list", "type_parameter_list"),
	},
	LangGo: {
		language: golang.GetLanguage,
		kinds: map[string]syntax.Kind{
			"block":                       syntax.KindBlock,
			"if_statement":                syntax.KindIf,
			"for_statement":               syntax.KindFor,
			"expression_switch_statement": syntax.KindSwitch,
			"type_switch_statement":       syntax.KindSwitch,
			"binary_expression":           syntax.KindBinary,
			"func_literal":                syntax.KindLambda,
		},
		units: map[string]syntax.UnitKind{
			"function_declaration": syntax.UnitFunction,
			"method_declaration":   syntax.UnitMethod,
		},
		signatureSkip: set("block"),
		tightBefore:   set("parameter_list", "type_parameter_list"),
		topLevelUnits: true,
	},
}
