package entity

import "errors"

// Diagnostic is a structured error or warning record emitted by commands.
type Diagnostic struct {
	Severity string `json:"severity"` // "error" | "warning"
	Code     string `json:"code"`     // e.g. "QNE001", "QNW001"
	Message  string `json:"message"`
	NodeID   string `json:"node,omitempty"`
}

// OpResult is the CLI JSON output of any command.
type OpResult struct {
	Version     string       `json:"version"` // "1"
	Changed     bool         `json:"changed"` // true if the document was modified
	Diagnostics []Diagnostic `json:"diagnostics"`
	Result      any          `json:"result,omitempty"`
}

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Operation errors (non-zero exit; document unchanged).
const (
	CodeNoSuchNode         = "QNE001"
	CodeDanglingReference  = "QNE002"
	CodeCyclicParentage    = "QNE003"
	CodeMalformedReference = "QNE004"
	CodeConnectionNotFound = "QNE005"
	CodeRootEntity         = "QNE006"
	CodeIOOrDecodeFailure  = "QNE007"
	CodeInvalidClipboard   = "QNE008"
	CodeConfirmation       = "QNE009"
	CodeIDExhausted        = "QNE010"
)

// Operation warnings (exit 0).
const (
	CodeExternalSceneAdded = "QNW001"
	CodeReferencesDropped  = "QNW002"
	CodeReferencesRepaired = "QNW003"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNoSuchNode, CodeNoSuchNode},
	{ErrDanglingReference, CodeDanglingReference},
	{ErrCyclicParentage, CodeCyclicParentage},
	{ErrMalformedReference, CodeMalformedReference},
	{ErrConnectionNotFound, CodeConnectionNotFound},
	{ErrRootEntity, CodeRootEntity},
	{ErrInvalidClipboard, CodeInvalidClipboard},
	{ErrIDExhausted, CodeIDExhausted},
}

// ErrorDiagnostic converts an operation error into an error diagnostic.
// Errors outside the taxonomy map to CodeIOOrDecodeFailure.
func ErrorDiagnostic(err error) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Code: CodeIOOrDecodeFailure, Message: err.Error()}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			d.Code = ec.code
			break
		}
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		d.NodeID = opErr.NodeID
	}
	return d
}
