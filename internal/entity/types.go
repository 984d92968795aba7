// Package entity provides domain types for entity documents: sub-entities,
// the references between them, and the clipboard format used to move
// subtrees between documents.
package entity

import (
	"encoding/json"
	"maps"
	"slices"
)

// PropertyValue is a typed property payload. Only reference-bearing types
// (see Classify) are interpreted; every other value is opaque.
type PropertyValue struct {
	Type     string          `json:"type"`
	Value    json.RawMessage `json:"value"`
	PostInit bool            `json:"postInit,omitempty"`
}

// Connections is the two-level shape shared by events, input copying and
// output copying: outer name -> inner name -> ordered targets.
type Connections map[string]map[string][]ConnectionTarget

// PropertyAlias exposes a property of another sub-entity under a new name.
type PropertyAlias struct {
	OriginalProperty string `json:"originalProperty"`
	OriginalEntity   Ref    `json:"originalEntity"`
}

// ExposedEntity publishes one or more sub-entities under a name.
type ExposedEntity struct {
	IsArray  bool  `json:"isArray"`
	RefersTo []Ref `json:"refersTo"`
}

// SubEntity is one node of an entity document.
type SubEntity struct {
	Parent     Ref    `json:"parent"`
	Name       string `json:"name"`
	Factory    string `json:"factory"`
	Blueprint  string `json:"blueprint"`
	EditorOnly bool   `json:"editorOnly,omitempty"`

	Properties         map[string]PropertyValue            `json:"properties,omitempty"`
	PlatformProperties map[string]map[string]PropertyValue `json:"platformSpecificProperties,omitempty"`

	Events        Connections `json:"events,omitempty"`
	InputCopying  Connections `json:"inputCopying,omitempty"`
	OutputCopying Connections `json:"outputCopying,omitempty"`

	PropertyAliases   map[string][]PropertyAlias `json:"propertyAliases,omitempty"`
	ExposedEntities   map[string]ExposedEntity   `json:"exposedEntities,omitempty"`
	ExposedInterfaces map[string]string          `json:"exposedInterfaces,omitempty"` // interface -> bare id
	Subsets           map[string][]string        `json:"subsets,omitempty"`           // subset -> bare ids

	// extra holds sub-entity fields this package does not model.
	extra map[string]json.RawMessage
}

// Clone returns a deep copy of s. Repairs are staged on clones so a failed
// operation leaves the document untouched.
func (s *SubEntity) Clone() *SubEntity {
	if s == nil {
		return nil
	}
	c := *s
	c.Properties = cloneProperties(s.Properties)
	if s.PlatformProperties != nil {
		c.PlatformProperties = make(map[string]map[string]PropertyValue, len(s.PlatformProperties))
		for platform, props := range s.PlatformProperties {
			c.PlatformProperties[platform] = cloneProperties(props)
		}
	}
	c.Events = s.Events.clone()
	c.InputCopying = s.InputCopying.clone()
	c.OutputCopying = s.OutputCopying.clone()
	if s.PropertyAliases != nil {
		c.PropertyAliases = make(map[string][]PropertyAlias, len(s.PropertyAliases))
		for name, aliases := range s.PropertyAliases {
			c.PropertyAliases[name] = slices.Clone(aliases)
		}
	}
	if s.ExposedEntities != nil {
		c.ExposedEntities = make(map[string]ExposedEntity, len(s.ExposedEntities))
		for name, exp := range s.ExposedEntities {
			exp.RefersTo = slices.Clone(exp.RefersTo)
			c.ExposedEntities[name] = exp
		}
	}
	c.ExposedInterfaces = maps.Clone(s.ExposedInterfaces)
	if s.Subsets != nil {
		c.Subsets = make(map[string][]string, len(s.Subsets))
		for name, ids := range s.Subsets {
			c.Subsets[name] = slices.Clone(ids)
		}
	}
	if s.extra != nil {
		c.extra = make(map[string]json.RawMessage, len(s.extra))
		for k, v := range s.extra {
			c.extra[k] = slices.Clone(v)
		}
	}
	return &c
}

func cloneProperties(props map[string]PropertyValue) map[string]PropertyValue {
	if props == nil {
		return nil
	}
	out := make(map[string]PropertyValue, len(props))
	for name, pv := range props {
		pv.Value = slices.Clone(pv.Value)
		out[name] = pv
	}
	return out
}

func (c Connections) clone() Connections {
	if c == nil {
		return nil
	}
	out := make(Connections, len(c))
	for outer, inner := range c {
		m := make(map[string][]ConnectionTarget, len(inner))
		for name, targets := range inner {
			cp := make([]ConnectionTarget, len(targets))
			for i, t := range targets {
				cp[i] = t.clone()
			}
			m[name] = cp
		}
		out[outer] = m
	}
	return out
}

// Entity is a whole entity document.
type Entity struct {
	FactoryHash    string
	BlueprintHash  string
	RootEntity     string
	Entities       Nodes
	ExternalScenes []string
	// Comments are free-text annotations keyed by sub-entity id.
	Comments map[string]string

	// extra holds top-level fields this package does not model so that
	// decode/encode round-trips them unchanged.
	extra map[string]json.RawMessage
}

// HasExternalScene reports whether scene is declared by the document.
func (e *Entity) HasExternalScene(scene string) bool {
	return slices.Contains(e.ExternalScenes, scene)
}

// CopiedData is a subtree lifted out of a document for pasting elsewhere.
// Its JSON form is the clipboard interchange format.
type CopiedData struct {
	RootEntity string `json:"rootEntity"`
	Data       Nodes  `json:"data"`
}
