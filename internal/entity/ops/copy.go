package ops

import (
	"github.com/eykd/entitygraph-go/internal/entity"
)

// Copy lifts target and its subtree out of doc as clipboard data. The copied
// sub-entities are deep clones in document order; doc is not modified.
func Copy(doc *entity.Entity, target string) (*entity.CopiedData, error) {
	ids, err := Descendants(doc, target, nil)
	if err != nil {
		return nil, retag(err, "copy")
	}
	in := subtreeSet(ids)

	cd := &entity.CopiedData{RootEntity: target}
	for _, id := range doc.Entities.IDs() {
		if !in[id] {
			continue
		}
		s, _ := doc.Entities.Get(id)
		cd.Data.Set(id, s.Clone())
	}
	return cd, nil
}
