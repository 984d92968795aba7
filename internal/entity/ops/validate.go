package ops

import (
	"errors"
	"fmt"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// ValidationResult is the outcome of Validate. Reason is empty when Valid.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	// Code is the diagnostic code of the violation.
	Code string `json:"code,omitempty"`
}

// errStopWalk ends a walk once the first violation is recorded.
var errStopWalk = errors.New("stop")

// Validate checks that every local reference held by s names a sub-entity
// present in doc, returning the first violation found. External and null
// references are always acceptable. Validate never mutates its inputs and
// reports problems as a value: it is routinely called on untrusted input.
func Validate(s *entity.SubEntity, doc *entity.Entity) ValidationResult {
	if s == nil {
		return ValidationResult{Reason: "sub-entity is empty", Code: entity.CodeIOOrDecodeFailure}
	}
	var reason string
	err := walkRefs("", s, func(rel entity.Relation, ref entity.Ref) error {
		target, ok := ref.LocalTarget()
		if !ok || doc.Entities.Has(target) {
			return nil
		}
		reason = fmt.Sprintf("%s references %s, which does not exist", rel, target)
		return errStopWalk
	})
	switch {
	case err == nil:
		return ValidationResult{Valid: true}
	case errors.Is(err, errStopWalk):
		return ValidationResult{Reason: reason, Code: entity.CodeDanglingReference}
	default:
		var opErr *entity.OpError
		if errors.As(err, &opErr) {
			return ValidationResult{Reason: fmt.Sprintf("%s has a malformed reference value", opErr.Field), Code: entity.CodeMalformedReference}
		}
		return ValidationResult{Reason: err.Error(), Code: entity.CodeMalformedReference}
	}
}

// Finding is one problem reported by ValidateDocument.
type Finding struct {
	NodeID string `json:"node"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// ValidateDocument audits a whole document: the root entity exists, every
// sub-entity passes Validate, and no sub-entity sits on a parent cycle.
// Findings are returned in document order; nil means the document is
// consistent.
func ValidateDocument(doc *entity.Entity) []Finding {
	var findings []Finding
	if doc.RootEntity != "" && !doc.Entities.Has(doc.RootEntity) {
		findings = append(findings, Finding{
			NodeID: doc.RootEntity,
			Code:   entity.CodeNoSuchNode,
			Reason: fmt.Sprintf("root entity %s does not exist", doc.RootEntity),
		})
	}
	for _, id := range doc.Entities.IDs() {
		s, _ := doc.Entities.Get(id)
		if res := Validate(s, doc); !res.Valid {
			findings = append(findings, Finding{NodeID: id, Code: res.Code, Reason: res.Reason})
		}
		if onParentCycle(doc, id) {
			findings = append(findings, Finding{
				NodeID: id,
				Code:   entity.CodeCyclicParentage,
				Reason: "parent links lead back to this entity",
			})
		}
	}
	return findings
}

// onParentCycle follows parent links upward from id and reports whether
// they return to id. The walk is bounded by the document size.
func onParentCycle(doc *entity.Entity, id string) bool {
	cur := id
	for range doc.Entities.Len() {
		s, ok := doc.Entities.Get(cur)
		if !ok {
			return false
		}
		next, ok := s.Parent.LocalTarget()
		if !ok {
			return false
		}
		if next == id {
			return true
		}
		cur = next
	}
	return false
}
