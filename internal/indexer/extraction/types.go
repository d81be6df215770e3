package extraction

import "time"

// ElementKind identifies the declaration kind of an Element.
type ElementKind string

const (
	KindFunction  ElementKind = "function"
	KindMethod    ElementKind = "method"
	KindStruct    ElementKind = "struct"
	KindUnion     ElementKind = "union"
	KindEnum      ElementKind = "enum"
	KindTrait     ElementKind = "trait"
	KindModule    ElementKind = "module"
	KindImpl      ElementKind = "impl"
	KindConst     ElementKind = "const"
	KindStatic    ElementKind = "static"
	KindTypeAlias ElementKind = "type_alias"
	KindMacro     ElementKind = "macro"
)

// AllKinds lists every element kind in a fixed order.
var AllKinds = []ElementKind{
	KindFunction, KindMethod, KindStruct, KindUnion, KindEnum, KindTrait,
	KindModule, KindImpl, KindConst, KindStatic, KindTypeAlias, KindMacro,
}

// HasBody reports whether elements of this kind carry an executable body.
func (k ElementKind) HasBody() bool {
	return k == KindFunction || k == KindMethod
}

// VisibilityLevel is the coarse visibility of a declaration.
type VisibilityLevel string

const (
	VisibilityPublic     VisibilityLevel = "public"
	VisibilityCrate      VisibilityLevel = "crate"
	VisibilityRestricted VisibilityLevel = "restricted"
	VisibilityPrivate    VisibilityLevel = "private"
)

// Visibility describes who may reference a declaration.
type Visibility struct {
	Level VisibilityLevel `json:"level"`
	// Restriction holds the target of pub(super), pub(self) or pub(in path), as written.
	Restriction string `json:"restriction,omitempty"`
}

// IsPrivate reports whether the declaration is private to its enclosing module.
func (v Visibility) IsPrivate() bool {
	return v.Level == VisibilityPrivate
}

// Location is the source span of an element. Lines and columns are 1-based.
type Location struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
	StartByte   int `json:"start_byte"`
	EndByte     int `json:"end_byte"`
}

// ElementHierarchy places an element in the lexical scope tree of its file.
type ElementHierarchy struct {
	QualifiedName string   `json:"qualified_name"`
	ModulePath    string   `json:"module_path"`
	ParentID      string   `json:"parent_id,omitempty"`
	ChildrenIDs   []string `json:"children_ids,omitempty"`
	NestingLevel  int      `json:"nesting_level"`
}

// HalsteadMetrics holds operator/operand tallies and the measures derived from them.
type HalsteadMetrics struct {
	DistinctOperators int     `json:"distinct_operators"` // n1
	DistinctOperands  int     `json:"distinct_operands"`  // n2
	TotalOperators    int     `json:"total_operators"`    // N1
	TotalOperands     int     `json:"total_operands"`     // N2
	Vocabulary        int     `json:"vocabulary"`
	Length            int     `json:"length"`
	Volume            float64 `json:"volume"`
	Difficulty        float64 `json:"difficulty"`
	Effort            float64 `json:"effort"`
}

// ComplexityMetrics captures the branching and structural cost of an element.
type ComplexityMetrics struct {
	Cyclomatic     int              `json:"cyclomatic"`
	Cognitive      int              `json:"cognitive"`
	NestingDepth   int              `json:"nesting_depth"`
	ParameterCount int              `json:"parameter_count"`
	Halstead       *HalsteadMetrics `json:"halstead,omitempty"`
}

// Element is one extracted declaration.
type Element struct {
	ID         string      `json:"id"`
	Kind       ElementKind `json:"kind"`
	Name       string      `json:"name"`
	Signature  string      `json:"signature"`
	Visibility Visibility  `json:"visibility"`
	Docs       []string    `json:"docs,omitempty"`
	Attributes []string    `json:"attributes,omitempty"`
	Location   Location    `json:"location"`

	// Complexity is nil for kinds without a body or baseline.
	Complexity *ComplexityMetrics `json:"complexity,omitempty"`
	Hierarchy  ElementHierarchy   `json:"hierarchy"`

	// Impl blocks only.
	SelfType  string `json:"self_type,omitempty"`
	TraitName string `json:"trait_name,omitempty"`

	// Functions and methods only.
	IsAsync  bool `json:"is_async,omitempty"`
	IsUnsafe bool `json:"is_unsafe,omitempty"`
	IsConst  bool `json:"is_const,omitempty"`
}

// ImportRecord is one use declaration leaf (or extern crate).
type ImportRecord struct {
	// Path is the module path leading up to the imported names.
	Path       string     `json:"path"`
	Names      []string   `json:"names,omitempty"`
	IsGlob     bool       `json:"is_glob"`
	Alias      string     `json:"alias,omitempty"`
	Visibility Visibility `json:"visibility"`
	Line       int        `json:"line"`
}

// FileMetrics are rollup counters for a single file.
type FileMetrics struct {
	TotalLines   int `json:"total_lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`

	ElementCount int                 `json:"element_count"`
	KindCounts   map[ElementKind]int `json:"kind_counts"`
	ImportCount  int                 `json:"import_count"`

	// Complexity rollups cover elements that carry a complexity value.
	ComplexElements   int     `json:"complex_elements"`
	TotalCyclomatic   int     `json:"total_cyclomatic"`
	TotalCognitive    int     `json:"total_cognitive"`
	MaxCyclomatic     int     `json:"max_cyclomatic"`
	MaxCognitive      int     `json:"max_cognitive"`
	AverageCyclomatic float64 `json:"average_cyclomatic"`
	AverageCognitive  float64 `json:"average_cognitive"`
}

// FileModel is the extraction result of one successfully parsed file.
type FileModel struct {
	Path         string         `json:"path"`
	RelativePath string         `json:"relative_path"`
	ContentHash  string         `json:"content_hash"`
	ModuleDocs   []string       `json:"module_docs,omitempty"`
	Elements     []Element      `json:"elements"`
	Imports      []ImportRecord `json:"imports"`
	Metrics      FileMetrics    `json:"metrics"`
}

// Dependency is a crate declared in the project manifest.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Section string `json:"section"`
}

// ProjectInfo describes the project an extraction run covered.
type ProjectInfo struct {
	Name         string       `json:"name"`
	Version      string       `json:"version,omitempty"`
	Edition      string       `json:"edition,omitempty"`
	RootPath     string       `json:"root_path"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// ProjectMetrics aggregates FileMetrics across a run.
type ProjectMetrics struct {
	FileCount    int `json:"file_count"`
	TotalLines   int `json:"total_lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`

	ElementCount int                 `json:"element_count"`
	KindCounts   map[ElementKind]int `json:"kind_counts"`
	ImportCount  int                 `json:"import_count"`

	ComplexElements   int     `json:"complex_elements"`
	TotalCyclomatic   int     `json:"total_cyclomatic"`
	TotalCognitive    int     `json:"total_cognitive"`
	MaxCyclomatic     int     `json:"max_cyclomatic"`
	MaxCognitive      int     `json:"max_cognitive"`
	AverageCyclomatic float64 `json:"average_cyclomatic"`
	AverageCognitive  float64 `json:"average_cognitive"`
}

// PartialFailure summarizes which files could not be processed.
type PartialFailure struct {
	SuccessfulCount int      `json:"successful_count"`
	FailedCount     int      `json:"failed_count"`
	TotalCount      int      `json:"total_count"`
	Errors          []string `json:"errors,omitempty"`
}

// ProjectModel is the full result of one extraction run. It is not modified after
// it is returned.
type ProjectModel struct {
	Project     ProjectInfo    `json:"project"`
	Files       []FileModel    `json:"files"`
	Metrics     ProjectMetrics `json:"metrics"`
	Failures    PartialFailure `json:"failures"`
	ExtractedAt time.Time      `json:"extracted_at"`
}
