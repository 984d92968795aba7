package ops

import (
	"github.com/eykd/entitygraph-go/internal/entity"
)

// DeleteResult reports what Delete removed and repaired.
type DeleteResult struct {
	// Removed lists the deleted ids, target first.
	Removed []string `json:"removed"`
	// ReferencesRepaired counts inbound references excised from surviving
	// sub-entities.
	ReferencesRepaired int `json:"referencesRepaired"`
}

// Delete removes target and its subtree from doc after excising every
// reference that points into the subtree from outside it.
//
// All repairs are staged on clones; doc is modified only once every repair
// has succeeded, so on error doc is unchanged (atomic abort semantics).
// Neither the root entity nor a subtree containing it can be deleted.
func Delete(doc *entity.Entity, target string) (DeleteResult, error) {
	if !doc.Entities.Has(target) {
		return DeleteResult{}, entity.NewOpError("delete", target, "", entity.ErrNoSuchNode)
	}
	if target == doc.RootEntity {
		return DeleteResult{}, entity.NewOpError("delete", target, "", entity.ErrRootEntity)
	}

	idx, err := Index(doc)
	if err != nil {
		return DeleteResult{}, retag(err, "delete")
	}
	removed, err := Descendants(doc, target, idx)
	if err != nil {
		return DeleteResult{}, retag(err, "delete")
	}
	inSubtree := subtreeSet(removed)
	if inSubtree[doc.RootEntity] {
		return DeleteResult{}, entity.NewOpError("delete", target, "", entity.ErrRootEntity)
	}

	staged := make(map[string]*entity.SubEntity)
	repaired := 0
	for _, dead := range removed {
		drop := dropTarget(dead)
		for _, rr := range idx[dead] {
			// Parent links into the subtree come only from nodes already in
			// it, and nodes in the subtree are about to disappear.
			if _, ok := rr.Relation.(entity.ParentRelation); ok || inSubtree[rr.From] {
				continue
			}
			s, ok := staged[rr.From]
			if !ok {
				orig, _ := doc.Entities.Get(rr.From)
				s = orig.Clone()
				staged[rr.From] = s
			}
			n, err := repair(rr.From, s, rr.Relation, deleteStrategy, drop)
			if err != nil {
				return DeleteResult{}, retag(err, "delete")
			}
			repaired += n
		}
	}

	for id, s := range staged {
		doc.Entities.Set(id, s)
	}
	for _, id := range removed {
		doc.Entities.Delete(id)
		delete(doc.Comments, id)
	}
	return DeleteResult{Removed: removed, ReferencesRepaired: repaired}, nil
}

// dropTarget drops references that resolve locally to id.
func dropTarget(id string) rewriteFunc {
	return func(ref entity.Ref) (entity.Ref, bool) {
		target, ok := ref.LocalTarget()
		return ref, ok && target == id
	}
}
