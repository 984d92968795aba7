package ops

import (
	"slices"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// Descendants returns target followed by every sub-entity reachable from it
// through parent links in the child direction, depth first with children in
// document order. idx may be nil, in which case it is computed.
//
// The traversal uses an explicit stack and a visited set: revisiting a node
// means the parent links form a cycle, reported as entity.ErrCyclicParentage.
func Descendants(doc *entity.Entity, target string, idx entity.ReverseIndex) ([]string, error) {
	if !doc.Entities.Has(target) {
		return nil, entity.NewOpError("descendants", target, "", entity.ErrNoSuchNode)
	}
	if idx == nil {
		var err error
		if idx, err = Index(doc); err != nil {
			return nil, err
		}
	}

	var out []string
	visited := make(map[string]bool)
	stack := []string{target}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			return nil, entity.NewOpError("descendants", id, "parent", entity.ErrCyclicParentage)
		}
		visited[id] = true
		out = append(out, id)

		kids := children(idx, id)
		slices.Reverse(kids)
		stack = append(stack, kids...)
	}
	return out, nil
}

// subtreeSet returns the ids of Descendants as a set.
func subtreeSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
