package entity

import (
	"encoding/json"
	"fmt"
)

// Relation identifies the field through which one sub-entity references
// another. The set of implementations is closed: the unexported marker
// method keeps other packages from adding kinds that repair code would not
// know how to handle.
type Relation interface {
	relation()
	// Kind is a stable lowercase name for the relation kind.
	Kind() string
	// String describes the field, e.g. `event "OnStart" -> "Activate"`.
	String() string
}

// ParentRelation is the parent link.
type ParentRelation struct{}

// PropertyRelation is a reference-typed property.
type PropertyRelation struct {
	Name string `json:"name"`
}

// PlatformPropertyRelation is a reference-typed platform-specific property.
type PlatformPropertyRelation struct {
	Platform string `json:"platform"`
	Name     string `json:"name"`
}

// EventRelation is an entry of events[Event][Trigger].
type EventRelation struct {
	Event   string `json:"event"`
	Trigger string `json:"trigger"`
}

// InputCopyRelation is an entry of inputCopying[Trigger][Propagate].
type InputCopyRelation struct {
	Trigger   string `json:"trigger"`
	Propagate string `json:"propagate"`
}

// OutputCopyRelation is an entry of outputCopying[Event][Propagate].
type OutputCopyRelation struct {
	Event     string `json:"event"`
	Propagate string `json:"propagate"`
}

// PropertyAliasRelation is an entry of propertyAliases[Alias].
type PropertyAliasRelation struct {
	Alias            string `json:"alias"`
	OriginalProperty string `json:"originalProperty"`
}

// ExposedEntityRelation is a target of exposedEntities[Name].
type ExposedEntityRelation struct {
	Name string `json:"name"`
}

// ExposedInterfaceRelation is exposedInterfaces[Name].
type ExposedInterfaceRelation struct {
	Name string `json:"name"`
}

// SubsetRelation is an id listed in subsets[Name].
type SubsetRelation struct {
	Name string `json:"name"`
}

func (ParentRelation) relation()           {}
func (PropertyRelation) relation()         {}
func (PlatformPropertyRelation) relation() {}
func (EventRelation) relation()            {}
func (InputCopyRelation) relation()        {}
func (OutputCopyRelation) relation()       {}
func (PropertyAliasRelation) relation()    {}
func (ExposedEntityRelation) relation()    {}
func (ExposedInterfaceRelation) relation() {}
func (SubsetRelation) relation()           {}

func (ParentRelation) Kind() string           { return "parent" }
func (PropertyRelation) Kind() string         { return "property" }
func (PlatformPropertyRelation) Kind() string { return "platformProperty" }
func (EventRelation) Kind() string            { return "event" }
func (InputCopyRelation) Kind() string        { return "inputCopy" }
func (OutputCopyRelation) Kind() string       { return "outputCopy" }
func (PropertyAliasRelation) Kind() string    { return "propertyAlias" }
func (ExposedEntityRelation) Kind() string    { return "exposedEntity" }
func (ExposedInterfaceRelation) Kind() string { return "exposedInterface" }
func (SubsetRelation) Kind() string           { return "subset" }

func (ParentRelation) String() string { return "parent" }

func (r PropertyRelation) String() string { return fmt.Sprintf("property %q", r.Name) }

func (r PlatformPropertyRelation) String() string {
	return fmt.Sprintf("platform %q property %q", r.Platform, r.Name)
}

func (r EventRelation) String() string {
	return fmt.Sprintf("event %q -> %q", r.Event, r.Trigger)
}

func (r InputCopyRelation) String() string {
	return fmt.Sprintf("input copy %q -> %q", r.Trigger, r.Propagate)
}

func (r OutputCopyRelation) String() string {
	return fmt.Sprintf("output copy %q -> %q", r.Event, r.Propagate)
}

func (r PropertyAliasRelation) String() string {
	return fmt.Sprintf("property alias %q (%s)", r.Alias, r.OriginalProperty)
}

func (r ExposedEntityRelation) String() string { return fmt.Sprintf("exposed entity %q", r.Name) }

func (r ExposedInterfaceRelation) String() string {
	return fmt.Sprintf("exposed interface %q", r.Name)
}

func (r SubsetRelation) String() string { return fmt.Sprintf("subset %q", r.Name) }

// ReverseRef records that From references some target through Relation.
type ReverseRef struct {
	From     string
	Relation Relation
}

// MarshalJSON writes {"from", "kind", "relation"}.
func (r ReverseRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		From     string   `json:"from"`
		Kind     string   `json:"kind"`
		Relation Relation `json:"relation"`
	}{r.From, r.Relation.Kind(), r.Relation})
}

// ReverseIndex maps every sub-entity id to the references pointing at it.
type ReverseIndex map[string][]ReverseRef
