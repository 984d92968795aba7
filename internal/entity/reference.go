package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RefKind discriminates the three shapes a Ref can take.
type RefKind uint8

const (
	// RefNull is an empty link.
	RefNull RefKind = iota
	// RefShort is a bare sub-entity id within the same document.
	RefShort
	// RefFull is an object reference that may name an external scene and an
	// exposed entity on the target.
	RefFull
)

// Ref is a link from one sub-entity to another. The zero value is a null
// reference.
//
// JSON forms:
//
//	null                                            RefNull
//	"cafe0123456789ab"                              RefShort
//	{"ref": "...", "externalScene": null,
//	 "exposedEntity": "..."}                        RefFull
type Ref struct {
	Kind RefKind
	// ID is the target sub-entity id (Short and Full).
	ID string
	// ExternalScene names the document the target lives in. Empty means the
	// reference points into the same document.
	ExternalScene string
	// ExposedEntity is the optional exposed-entity name on a Full reference.
	ExposedEntity string
}

// NullRef returns a null reference.
func NullRef() Ref { return Ref{} }

// ShortRef returns a local reference to id.
func ShortRef(id string) Ref { return Ref{Kind: RefShort, ID: id} }

// FullRef returns an object reference. scene and exposed may be empty.
func FullRef(id, scene, exposed string) Ref {
	return Ref{Kind: RefFull, ID: id, ExternalScene: scene, ExposedEntity: exposed}
}

// LocalTarget returns the id the reference resolves to inside its own
// document. ok is false for null and external references.
func (r Ref) LocalTarget() (id string, ok bool) {
	switch r.Kind {
	case RefShort:
		return r.ID, r.ID != ""
	case RefFull:
		if r.ExternalScene == "" {
			return r.ID, true
		}
	}
	return "", false
}

// IsLocal reports whether the reference resolves inside its own document.
func (r Ref) IsLocal() bool {
	_, ok := r.LocalTarget()
	return ok
}

// IsExternal reports whether the reference names another document.
func (r Ref) IsExternal() bool {
	return r.Kind == RefFull && r.ExternalScene != ""
}

// WithTarget returns a copy of r pointing at id. The shape of the reference
// is preserved: a Full reference stays Full and keeps its exposed-entity tag.
func (r Ref) WithTarget(id string) Ref {
	r.ID = id
	return r
}

// String renders the reference for messages.
func (r Ref) String() string {
	switch r.Kind {
	case RefShort:
		return r.ID
	case RefFull:
		s := r.ID
		if r.ExposedEntity != "" {
			s += "#" + r.ExposedEntity
		}
		if r.ExternalScene != "" {
			s += " in " + r.ExternalScene
		}
		return s
	}
	return "null"
}

type fullRefJSON struct {
	Ref           string  `json:"ref"`
	ExternalScene *string `json:"externalScene"`
	ExposedEntity string  `json:"exposedEntity,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefNull:
		return []byte("null"), nil
	case RefShort:
		return json.Marshal(r.ID)
	case RefFull:
		out := fullRefJSON{Ref: r.ID, ExposedEntity: r.ExposedEntity}
		if r.ExternalScene != "" {
			scene := r.ExternalScene
			out.ExternalScene = &scene
		}
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("unknown reference kind %d", r.Kind)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty reference", ErrMalformedReference)
	}
	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return fmt.Errorf("%w: %s", ErrMalformedReference, data)
		}
		*r = NullRef()
		return nil
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedReference, err)
		}
		*r = ShortRef(id)
		return nil
	case '{':
		var full fullRefJSON
		if err := json.Unmarshal(data, &full); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedReference, err)
		}
		scene := ""
		if full.ExternalScene != nil {
			scene = *full.ExternalScene
		}
		*r = FullRef(full.Ref, scene, full.ExposedEntity)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMalformedReference, data)
}
