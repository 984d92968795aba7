package ops

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// newDoc returns a document holding only its root entity.
func newDoc(root string) *entity.Entity {
	d := &entity.Entity{RootEntity: root}
	d.Entities.Set(root, &entity.SubEntity{Name: root})
	return d
}

// add inserts a sub-entity named id under parent and applies edits to it.
func add(d *entity.Entity, id, parent string, edits ...func(*entity.SubEntity)) *entity.SubEntity {
	s := &entity.SubEntity{Name: id, Parent: entity.ShortRef(parent)}
	for _, edit := range edits {
		edit(s)
	}
	d.Entities.Set(id, s)
	return s
}

func withProp(name string, pv entity.PropertyValue) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.Properties == nil {
			s.Properties = map[string]entity.PropertyValue{}
		}
		s.Properties[name] = pv
	}
}

func withPlatformProp(platform, name string, pv entity.PropertyValue) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.PlatformProperties == nil {
			s.PlatformProperties = map[string]map[string]entity.PropertyValue{}
		}
		if s.PlatformProperties[platform] == nil {
			s.PlatformProperties[platform] = map[string]entity.PropertyValue{}
		}
		s.PlatformProperties[platform][name] = pv
	}
}

func withEvent(event, trigger string, refs ...entity.Ref) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.Events == nil {
			s.Events = entity.Connections{}
		}
		s.Events[event] = map[string][]entity.ConnectionTarget{trigger: targets(refs...)}
	}
}

func withInputCopy(trigger, propagate string, refs ...entity.Ref) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.InputCopying == nil {
			s.InputCopying = entity.Connections{}
		}
		s.InputCopying[trigger] = map[string][]entity.ConnectionTarget{propagate: targets(refs...)}
	}
}

func withOutputCopy(event, propagate string, refs ...entity.Ref) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.OutputCopying == nil {
			s.OutputCopying = entity.Connections{}
		}
		s.OutputCopying[event] = map[string][]entity.ConnectionTarget{propagate: targets(refs...)}
	}
}

func withAlias(alias string, entries ...entity.PropertyAlias) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.PropertyAliases == nil {
			s.PropertyAliases = map[string][]entity.PropertyAlias{}
		}
		s.PropertyAliases[alias] = entries
	}
}

func withExposedEntity(name string, refs ...entity.Ref) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.ExposedEntities == nil {
			s.ExposedEntities = map[string]entity.ExposedEntity{}
		}
		s.ExposedEntities[name] = entity.ExposedEntity{RefersTo: refs}
	}
}

func withInterface(name, id string) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.ExposedInterfaces == nil {
			s.ExposedInterfaces = map[string]string{}
		}
		s.ExposedInterfaces[name] = id
	}
}

func withSubset(name string, ids ...string) func(*entity.SubEntity) {
	return func(s *entity.SubEntity) {
		if s.Subsets == nil {
			s.Subsets = map[string][]string{}
		}
		s.Subsets[name] = ids
	}
}

func targets(refs ...entity.Ref) []entity.ConnectionTarget {
	out := make([]entity.ConnectionTarget, len(refs))
	for i, r := range refs {
		out[i] = entity.ConnectionTarget{Ref: r}
	}
	return out
}

func short(id string) entity.Ref { return entity.ShortRef(id) }

// get returns the sub-entity id, failing the test when it is absent.
func get(t *testing.T, d *entity.Entity, id string) *entity.SubEntity {
	t.Helper()
	s, ok := d.Entities.Get(id)
	require.Truef(t, ok, "entity %s should exist", id)
	return s
}

// requireConsistent asserts that every local reference in d resolves.
func requireConsistent(t *testing.T, d *entity.Entity) {
	t.Helper()
	require.Empty(t, ValidateDocument(d))
}

// snapshot serialises d so tests can check it was left unchanged.
func snapshot(t *testing.T, d *entity.Entity) string {
	t.Helper()
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	return string(raw)
}

// relationsTo returns the relations recorded in idx for target, by source.
func relationsTo(idx entity.ReverseIndex, target, from string) []entity.Relation {
	var rels []entity.Relation
	for _, rr := range idx[target] {
		if rr.From == from {
			rels = append(rels, rr.Relation)
		}
	}
	return rels
}
