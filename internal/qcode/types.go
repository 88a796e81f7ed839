package qcode

// Document is one annotated text to be parsed. The ID is opaque; it is only
// used to attribute output rows and diagnostics.
type Document struct {
	ID   string
	Text string
}

// Record is one output row: a coded span of text attributed to a single code.
// A close marker carrying N labels produces N records sharing the same text.
type Record struct {
	DocID string `json:"doc_id"`
	Code  string `json:"code"`
	Text  string `json:"text"`
}

// UnresolvedCode is the placeholder code for spans whose label block is
// missing, malformed, or empty. The span text is kept rather than dropped.
const UnresolvedCode = "UNRESOLVED"

// DiagnosticKind classifies a structural problem found during parsing.
type DiagnosticKind string

const (
	DiagUnbalancedTags    DiagnosticKind = "unbalanced_tags"
	DiagMissingLabelBlock DiagnosticKind = "missing_label_block"
	DiagEmptyLabel        DiagnosticKind = "empty_label"
)

// Diagnostic is a non-fatal structural warning. Parsing always continues past
// the offending markup; callers decide whether diagnostics are errors.
type Diagnostic struct {
	DocID  string         `json:"doc_id"`
	Kind   DiagnosticKind `json:"kind"`
	Detail string         `json:"detail"`
}
