package ops

import (
	"github.com/eykd/entitygraph-go/internal/entity"
)

// Index builds the reverse-reference index of doc in one pass. Every
// sub-entity gets an entry, empty if nothing points at it. Each occurrence
// of a local reference contributes one record, so an array property or a
// connection list may record the same source several times.
//
// Index fails with entity.ErrMalformedReference when a reference-typed
// property cannot be decoded.
func Index(doc *entity.Entity) (entity.ReverseIndex, error) {
	ids := doc.Entities.IDs()
	idx := make(entity.ReverseIndex, len(ids))
	for _, id := range ids {
		idx[id] = []entity.ReverseRef{}
	}
	for _, id := range ids {
		s, _ := doc.Entities.Get(id)
		err := walkRefs(id, s, func(rel entity.Relation, ref entity.Ref) error {
			if target, ok := ref.LocalTarget(); ok {
				idx[target] = append(idx[target], entity.ReverseRef{From: id, Relation: rel})
			}
			return nil
		})
		if err != nil {
			return nil, retag(err, "index")
		}
	}
	return idx, nil
}

// children returns the ids whose parent resolves to id, in document order.
func children(idx entity.ReverseIndex, id string) []string {
	var out []string
	for _, rr := range idx[id] {
		if _, ok := rr.Relation.(entity.ParentRelation); ok {
			out = append(out, rr.From)
		}
	}
	return out
}

// retag replaces the Op of a walker *entity.OpError with op.
func retag(err error, op string) error {
	if opErr, ok := err.(*entity.OpError); ok {
		cp := *opErr
		cp.Op = op
		return &cp
	}
	return err
}

// Edge is one reference held by a sub-entity.
type Edge struct {
	Relation entity.Relation `json:"-"`
	Ref      entity.Ref      `json:"ref"`
}

// References lists every reference held by sub-entity id, local or not, in
// walk order. Null references are skipped.
func References(id string, s *entity.SubEntity) ([]Edge, error) {
	var edges []Edge
	err := walkRefs(id, s, func(rel entity.Relation, ref entity.Ref) error {
		if ref.Kind != entity.RefNull {
			edges = append(edges, Edge{Relation: rel, Ref: ref})
		}
		return nil
	})
	if err != nil {
		return nil, retag(err, "references")
	}
	return edges, nil
}
