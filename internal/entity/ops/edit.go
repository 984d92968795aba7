package ops

import (
	"fmt"
	"slices"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// Reparent moves id under parent. The destination must exist and must not
// lie inside the subtree of id. The root entity cannot be reparented.
func Reparent(doc *entity.Entity, id, parent string) error {
	s, ok := doc.Entities.Get(id)
	if !ok {
		return entity.NewOpError("reparent", id, "", entity.ErrNoSuchNode)
	}
	if id == doc.RootEntity {
		return entity.NewOpError("reparent", id, "", entity.ErrRootEntity)
	}
	if !doc.Entities.Has(parent) {
		return entity.NewOpError("reparent", parent, "", entity.ErrNoSuchNode)
	}
	if err := checkNoCycle(doc, id, parent); err != nil {
		return retag(err, "reparent")
	}

	next := s.Clone()
	next.Parent = entity.ShortRef(parent)
	if res := Validate(next, doc); !res.Valid {
		return entity.NewOpError("reparent", id, "", invalidNode(res))
	}
	doc.Entities.Set(id, next)
	return nil
}

// Replace swaps the sub-entity stored under id for s after gating it through
// Validate. An invalid replacement is reported through the returned result
// and leaves doc unchanged; err is reserved for operation faults (missing id,
// a parent link that would create a cycle).
func Replace(doc *entity.Entity, id string, s *entity.SubEntity) (ValidationResult, error) {
	if !doc.Entities.Has(id) {
		return ValidationResult{}, entity.NewOpError("replace", id, "", entity.ErrNoSuchNode)
	}
	res := Validate(s, doc)
	if !res.Valid {
		return res, nil
	}
	if parent, ok := s.Parent.LocalTarget(); ok {
		if err := checkNoCycle(doc, id, parent); err != nil {
			return ValidationResult{}, retag(err, "replace")
		}
	}
	doc.Entities.Set(id, s.Clone())
	return res, nil
}

// checkNoCycle fails when parent is id itself or one of its descendants.
func checkNoCycle(doc *entity.Entity, id, parent string) error {
	subtree, err := Descendants(doc, id, nil)
	if err != nil {
		return err
	}
	if slices.Contains(subtree, parent) {
		return entity.NewOpError("reparent", parent, "parent", entity.ErrCyclicParentage)
	}
	return nil
}

// invalidNode converts a failed validation into an error.
func invalidNode(res ValidationResult) error {
	if res.Code == entity.CodeMalformedReference {
		return fmt.Errorf("%w: %s", entity.ErrMalformedReference, res.Reason)
	}
	return fmt.Errorf("%w: %s", entity.ErrDanglingReference, res.Reason)
}
