package ops

import (
	"slices"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// PasteParams are parameters for the paste operation.
type PasteParams struct {
	// Parent is the id in the destination document that receives the pasted
	// root.
	Parent string
	// Data is the copied subtree. It is not modified.
	Data *entity.CopiedData
	// MaxIDAttempts bounds id generation retries per pasted entity
	// (default DefaultMaxIDAttempts).
	MaxIDAttempts int
}

// PasteResult reports the outcome of a paste.
type PasteResult struct {
	// Root is the new id of the pasted root.
	Root string `json:"root"`
	// Changelist maps each copied id to its new id.
	Changelist map[string]string `json:"changelist"`
	// ExternalScenesAdded counts external scenes the destination had to
	// declare for the pasted references.
	ExternalScenesAdded int `json:"externalScenesAdded"`
	// NewExternalScenes lists those scenes in the order they were added.
	NewExternalScenes []string `json:"newExternalScenes,omitempty"`
	// ReferencesDropped counts references that would have dangled in the
	// destination and were nulled or removed.
	ReferencesDropped int `json:"referencesDropped"`
}

// Paste inserts a copied subtree under params.Parent with fresh ids.
//
// Every reference inside the pasted entities is rewritten: references to
// copied entities follow the changelist (keeping their Short or Full shape),
// external references cause their scene to be declared on doc, and local
// references that would name neither a destination entity nor a pasted one
// are dropped (scalar properties become null, list entries are removed, an
// exposed entity left with no targets is removed).
//
// On error doc is unchanged.
func Paste(doc *entity.Entity, params PasteParams) (PasteResult, error) {
	data := params.Data
	if data == nil || !data.Data.Has(data.RootEntity) {
		return PasteResult{}, entity.NewOpError("paste", "", "", entity.ErrInvalidClipboard)
	}
	if !doc.Entities.Has(params.Parent) {
		return PasteResult{}, entity.NewOpError("paste", params.Parent, "", entity.ErrNoSuchNode)
	}

	oldIDs := data.Data.IDs()
	pasteIDs := make(map[string]bool, 2*len(oldIDs))
	for _, id := range oldIDs {
		pasteIDs[id] = true
	}
	taken := func(id string) bool { return pasteIDs[id] || doc.Entities.Has(id) }
	changelist := make(map[string]string, len(oldIDs))
	for _, old := range oldIDs {
		id, ok := freshID(taken, params.MaxIDAttempts)
		if !ok {
			return PasteResult{}, entity.NewOpError("paste", old, "", entity.ErrIDExhausted)
		}
		changelist[old] = id
		pasteIDs[id] = true
	}

	var scenes []string
	rewrite := func(ref entity.Ref) (entity.Ref, bool) {
		if ref.IsExternal() {
			if !doc.HasExternalScene(ref.ExternalScene) && !slices.Contains(scenes, ref.ExternalScene) {
				scenes = append(scenes, ref.ExternalScene)
			}
			return ref, false
		}
		target, ok := ref.LocalTarget()
		if !ok {
			return ref, false
		}
		if id, moved := changelist[target]; moved {
			ref = ref.WithTarget(id)
			target = id
		}
		return ref, !pasteIDs[target] && !doc.Entities.Has(target)
	}

	staged := make([]*entity.SubEntity, len(oldIDs))
	dropped := 0
	for i, old := range oldIDs {
		src, _ := data.Data.Get(old)
		s := src.Clone()
		rels, err := relationsOf(old, s)
		if err != nil {
			return PasteResult{}, retag(err, "paste")
		}
		isRoot := old == data.RootEntity
		for _, rel := range rels {
			if _, ok := rel.(entity.ParentRelation); ok && isRoot {
				continue
			}
			n, err := repair(old, s, rel, pasteStrategy, rewrite)
			if err != nil {
				return PasteResult{}, retag(err, "paste")
			}
			dropped += n
		}
		if isRoot {
			s.Parent = entity.ShortRef(params.Parent)
		}
		staged[i] = s
	}

	for i, old := range oldIDs {
		doc.Entities.Set(changelist[old], staged[i])
	}
	doc.ExternalScenes = append(doc.ExternalScenes, scenes...)

	return PasteResult{
		Root:                changelist[data.RootEntity],
		Changelist:          changelist,
		ExternalScenesAdded: len(scenes),
		NewExternalScenes:   scenes,
		ReferencesDropped:   dropped,
	}, nil
}

// relationsOf lists each field of s that holds references, once per field.
func relationsOf(id string, s *entity.SubEntity) ([]entity.Relation, error) {
	var rels []entity.Relation
	seen := make(map[entity.Relation]bool)
	err := walkRefs(id, s, func(rel entity.Relation, _ entity.Ref) error {
		if pa, ok := rel.(entity.PropertyAliasRelation); ok {
			// repair treats the whole alias list as one field.
			rel = entity.PropertyAliasRelation{Alias: pa.Alias}
		}
		if !seen[rel] {
			seen[rel] = true
			rels = append(rels, rel)
		}
		return nil
	})
	return rels, err
}
