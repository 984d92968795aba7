// Package ops implements the reference-graph operations on entity
// documents: reverse indexing, subtree enumeration, validation, deletion and
// copy/paste. Every function takes the document explicitly and assumes the
// caller holds exclusive access to it for the duration of the call.
package ops

import (
	"maps"
	"slices"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// refVisitor receives each reference embedded in a sub-entity together with
// the relation it is stored under. Returning an error stops the walk.
type refVisitor func(rel entity.Relation, ref entity.Ref) error

// walkRefs visits every reference held by sub-entity id in a fixed order: parent,
// properties, platform properties, events, input copying, output copying,
// property aliases, exposed entities, exposed interfaces, subsets. Map keys
// are visited in sorted order so repeated walks agree. Bare ids
// (exposed interfaces, subsets) are presented as short references.
func walkRefs(id string, s *entity.SubEntity, visit refVisitor) error {
	if err := visit(entity.ParentRelation{}, s.Parent); err != nil {
		return err
	}

	if err := walkProperties(id, s.Properties, func(name string) entity.Relation {
		return entity.PropertyRelation{Name: name}
	}, visit); err != nil {
		return err
	}
	for _, platform := range sortedKeys(s.PlatformProperties) {
		if err := walkProperties(id, s.PlatformProperties[platform], func(name string) entity.Relation {
			return entity.PlatformPropertyRelation{Platform: platform, Name: name}
		}, visit); err != nil {
			return err
		}
	}

	if err := walkConnections(s.Events, func(a, b string) entity.Relation {
		return entity.EventRelation{Event: a, Trigger: b}
	}, visit); err != nil {
		return err
	}
	if err := walkConnections(s.InputCopying, func(a, b string) entity.Relation {
		return entity.InputCopyRelation{Trigger: a, Propagate: b}
	}, visit); err != nil {
		return err
	}
	if err := walkConnections(s.OutputCopying, func(a, b string) entity.Relation {
		return entity.OutputCopyRelation{Event: a, Propagate: b}
	}, visit); err != nil {
		return err
	}

	for _, alias := range sortedKeys(s.PropertyAliases) {
		for _, pa := range s.PropertyAliases[alias] {
			rel := entity.PropertyAliasRelation{Alias: alias, OriginalProperty: pa.OriginalProperty}
			if err := visit(rel, pa.OriginalEntity); err != nil {
				return err
			}
		}
	}

	for _, name := range sortedKeys(s.ExposedEntities) {
		for _, ref := range s.ExposedEntities[name].RefersTo {
			if err := visit(entity.ExposedEntityRelation{Name: name}, ref); err != nil {
				return err
			}
		}
	}

	for _, name := range sortedKeys(s.ExposedInterfaces) {
		if err := visit(entity.ExposedInterfaceRelation{Name: name}, entity.ShortRef(s.ExposedInterfaces[name])); err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(s.Subsets) {
		for _, member := range s.Subsets[name] {
			if err := visit(entity.SubsetRelation{Name: name}, entity.ShortRef(member)); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkProperties visits the references held by reference-typed properties.
// A payload that cannot be decoded is reported as an *entity.OpError naming
// the property.
func walkProperties(id string, props map[string]entity.PropertyValue, relFor func(name string) entity.Relation, visit refVisitor) error {
	for _, name := range sortedKeys(props) {
		pv := props[name]
		rel := relFor(name)
		switch pv.Class() {
		case entity.ClassRef:
			ref, err := pv.RefValue()
			if err != nil {
				return entity.NewOpError("walk", id, rel.String(), err)
			}
			if err := visit(rel, ref); err != nil {
				return err
			}
		case entity.ClassRefArray:
			refs, err := pv.RefArrayValue()
			if err != nil {
				return entity.NewOpError("walk", id, rel.String(), err)
			}
			for _, ref := range refs {
				if err := visit(rel, ref); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func walkConnections(conns entity.Connections, relFor func(a, b string) entity.Relation, visit refVisitor) error {
	for _, a := range sortedKeys(conns) {
		inner := conns[a]
		for _, b := range sortedKeys(inner) {
			rel := relFor(a, b)
			for _, t := range inner[b] {
				if err := visit(rel, t.Ref); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	return slices.Sorted(maps.Keys(m))
}
