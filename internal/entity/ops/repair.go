package ops

import (
	"fmt"
	"slices"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// rewriteFunc decides the fate of one stored reference: it returns the
// reference to keep in its place, or drop=true to remove it.
type rewriteFunc func(ref entity.Ref) (next entity.Ref, drop bool)

// scalarPolicy says what dropping the reference of a scalar property does.
type scalarPolicy uint8

const (
	// scalarRemoveKey deletes the property.
	scalarRemoveKey scalarPolicy = iota
	// scalarSetNull keeps the property with a null reference.
	scalarSetNull
)

// strategy parameterises repair for one operation.
type strategy struct {
	scalar scalarPolicy
	// firstOnly limits a connection list to one dropped entry per call and
	// makes a call that drops nothing an ErrConnectionNotFound fault. The
	// index records one entry per occurrence, so one call per record removes
	// exactly the recorded occurrences.
	firstOnly bool
}

var (
	deleteStrategy = strategy{scalar: scalarRemoveKey, firstOnly: true}
	pasteStrategy  = strategy{scalar: scalarSetNull}
)

// repair applies fn to every reference stored under rel on s, editing s in
// place, and returns the number of references dropped. Calling it again on
// an already repaired field is a no-op, except under firstOnly where a
// connection with nothing left to drop is reported.
func repair(id string, s *entity.SubEntity, rel entity.Relation, st strategy, fn rewriteFunc) (int, error) {
	switch r := rel.(type) {
	case entity.ParentRelation:
		next, drop := fn(s.Parent)
		if drop {
			s.Parent = entity.NullRef()
			return 1, nil
		}
		s.Parent = next
		return 0, nil

	case entity.PropertyRelation:
		return repairProperty(id, s.Properties, r.Name, rel, st, fn)

	case entity.PlatformPropertyRelation:
		return repairProperty(id, s.PlatformProperties[r.Platform], r.Name, rel, st, fn)

	case entity.EventRelation:
		return repairConnections(id, s.Events, r.Event, r.Trigger, rel, st, fn)

	case entity.InputCopyRelation:
		return repairConnections(id, s.InputCopying, r.Trigger, r.Propagate, rel, st, fn)

	case entity.OutputCopyRelation:
		return repairConnections(id, s.OutputCopying, r.Event, r.Propagate, rel, st, fn)

	case entity.PropertyAliasRelation:
		aliases, ok := s.PropertyAliases[r.Alias]
		if !ok {
			return 0, nil
		}
		dropped := 0
		kept := aliases[:0:0]
		for _, pa := range aliases {
			next, drop := fn(pa.OriginalEntity)
			if drop {
				dropped++
				continue
			}
			pa.OriginalEntity = next
			kept = append(kept, pa)
		}
		s.PropertyAliases[r.Alias] = kept
		return dropped, nil

	case entity.ExposedEntityRelation:
		exp, ok := s.ExposedEntities[r.Name]
		if !ok {
			return 0, nil
		}
		refs, dropped := filterRefs(exp.RefersTo, fn)
		if len(refs) == 0 {
			delete(s.ExposedEntities, r.Name)
			return dropped, nil
		}
		exp.RefersTo = refs
		s.ExposedEntities[r.Name] = exp
		return dropped, nil

	case entity.ExposedInterfaceRelation:
		target, ok := s.ExposedInterfaces[r.Name]
		if !ok {
			return 0, nil
		}
		next, drop := fn(entity.ShortRef(target))
		if drop {
			delete(s.ExposedInterfaces, r.Name)
			return 1, nil
		}
		s.ExposedInterfaces[r.Name] = next.ID
		return 0, nil

	case entity.SubsetRelation:
		members, ok := s.Subsets[r.Name]
		if !ok {
			return 0, nil
		}
		dropped := 0
		kept := members[:0:0]
		for _, m := range members {
			next, drop := fn(entity.ShortRef(m))
			if drop {
				dropped++
				continue
			}
			kept = append(kept, next.ID)
		}
		s.Subsets[r.Name] = kept
		return dropped, nil
	}
	return 0, entity.NewOpError("repair", id, rel.String(), fmt.Errorf("unhandled relation kind %T", rel))
}

// repairProperty rewrites a reference-typed property. Opaque properties and
// missing keys are left alone.
func repairProperty(id string, props map[string]entity.PropertyValue, name string, rel entity.Relation, st strategy, fn rewriteFunc) (int, error) {
	pv, ok := props[name]
	if !ok {
		return 0, nil
	}
	switch pv.Class() {
	case entity.ClassRef:
		ref, err := pv.RefValue()
		if err != nil {
			return 0, entity.NewOpError("repair", id, rel.String(), err)
		}
		next, drop := fn(ref)
		switch {
		case drop && st.scalar == scalarRemoveKey:
			delete(props, name)
		case drop:
			props[name] = pv.WithRef(entity.NullRef())
		case next != ref:
			props[name] = pv.WithRef(next)
		}
		if drop {
			return 1, nil
		}
		return 0, nil

	case entity.ClassRefArray:
		refs, err := pv.RefArrayValue()
		if err != nil {
			return 0, entity.NewOpError("repair", id, rel.String(), err)
		}
		kept, dropped := filterRefs(refs, fn)
		if dropped > 0 || !slices.Equal(kept, refs) {
			props[name] = pv.WithRefArray(kept)
		}
		return dropped, nil
	}
	return 0, nil
}

// repairConnections rewrites conns[outer][inner]. Under st.firstOnly only
// the first dropped entry is removed; later entries are kept untouched.
func repairConnections(id string, conns entity.Connections, outer, inner string, rel entity.Relation, st strategy, fn rewriteFunc) (int, error) {
	targets := conns[outer][inner]
	dropped := 0
	kept := make([]entity.ConnectionTarget, 0, len(targets))
	for _, t := range targets {
		if st.firstOnly && dropped > 0 {
			kept = append(kept, t)
			continue
		}
		next, drop := fn(t.Ref)
		if drop {
			dropped++
			continue
		}
		t.Ref = next
		kept = append(kept, t)
	}
	if st.firstOnly && dropped == 0 {
		return 0, entity.NewOpError("repair", id, rel.String(), entity.ErrConnectionNotFound)
	}
	if targets != nil {
		conns[outer][inner] = kept
	}
	return dropped, nil
}

// filterRefs applies fn to each ref, preserving the order of kept entries.
func filterRefs(refs []entity.Ref, fn rewriteFunc) ([]entity.Ref, int) {
	kept := make([]entity.Ref, 0, len(refs))
	dropped := 0
	for _, ref := range refs {
		next, drop := fn(ref)
		if drop {
			dropped++
			continue
		}
		kept = append(kept, next)
	}
	return kept, dropped
}
