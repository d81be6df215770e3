package parsers

// declKind is the closed set of syntax node kinds the visitor turns into elements.
type declKind int

const (
	declNone declKind = iota
	declFunction
	declFunctionSignature
	declStruct
	declUnion
	declEnum
	declTrait
	declImpl
	declModule
	declForeignModule
	declConst
	declStatic
	declTypeAlias
	declMacro
)

var declKindsByNode = map[string]declKind{
	"function_item":           declFunction,
	"function_signature_item": declFunctionSignature,
	"struct_item":             declStruct,
	"union_item":              declUnion,
	"enum_item":               declEnum,
	"trait_item":              declTrait,
	"impl_item":               declImpl,
	"mod_item":                declModule,
	"foreign_mod_item":        declForeignModule,
	"const_item":              declConst,
	"static_item":             declStatic,
	"type_item":               declTypeAlias,
	"macro_definition":        declMacro,
}

func declKindOf(nodeKind string) declKind {
	return declKindsByNode[nodeKind]
}

// itemNodeKinds are node kinds that start a separate item when nested in a body.
var itemNodeKinds = map[string]bool{
	"function_item":            true,
	"function_signature_item":  true,
	"struct_item":              true,
	"union_item":               true,
	"enum_item":                true,
	"trait_item":               true,
	"impl_item":                true,
	"mod_item":                 true,
	"foreign_mod_item":         true,
	"const_item":               true,
	"static_item":              true,
	"type_item":                true,
	"macro_definition":         true,
	"use_declaration":          true,
	"extern_crate_declaration": true,
	"attribute_item":           true,
	"inner_attribute_item":     true,
}

// signatureCutFields names the child field whose text is excluded from a rendered
// signature, per declaration node kind.
var signatureCutFields = map[string]string{
	"function_item":    "body",
	"struct_item":      "body",
	"union_item":       "body",
	"enum_item":        "body",
	"trait_item":       "body",
	"impl_item":        "body",
	"mod_item":         "body",
	"foreign_mod_item": "body",
	"const_item":       "value",
	"static_item":      "value",
}

// bodyKinds are the node kinds a signature cut field must have to be excluded.
// Tuple struct fields stay part of the signature.
var bodyKinds = map[string]bool{
	"block":                  true,
	"field_declaration_list": true,
	"enum_variant_list":      true,
	"declaration_list":       true,
}
