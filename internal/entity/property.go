package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PropertyClass says whether a property type carries references.
type PropertyClass uint8

const (
	// ClassOpaque values are never inspected.
	ClassOpaque PropertyClass = iota
	// ClassRef values hold a single Ref.
	ClassRef
	// ClassRefArray values hold an ordered list of Ref.
	ClassRefArray
)

// Reference-bearing property type tags.
const (
	TypeEntityRef      = "SEntityTemplateReference"
	TypeEntityRefArray = "TArray<SEntityTemplateReference>"
)

var propertyClasses = map[string]PropertyClass{
	TypeEntityRef:      ClassRef,
	TypeEntityRefArray: ClassRefArray,
}

// Classify maps a property type tag to its class.
func Classify(typeTag string) PropertyClass {
	return propertyClasses[typeTag]
}

// Class returns the class of the property's type tag.
func (p PropertyValue) Class() PropertyClass {
	return Classify(p.Type)
}

// RefValue decodes a ClassRef payload.
func (p PropertyValue) RefValue() (Ref, error) {
	var r Ref
	if len(p.Value) == 0 {
		return r, fmt.Errorf("%w: missing value", ErrMalformedReference)
	}
	if err := json.Unmarshal(p.Value, &r); err != nil {
		return Ref{}, wrapMalformed(err)
	}
	return r, nil
}

// RefArrayValue decodes a ClassRefArray payload. A null payload is an empty
// array.
func (p PropertyValue) RefArrayValue() ([]Ref, error) {
	var refs []Ref
	if len(p.Value) == 0 {
		return nil, fmt.Errorf("%w: missing value", ErrMalformedReference)
	}
	if err := json.Unmarshal(p.Value, &refs); err != nil {
		return nil, wrapMalformed(err)
	}
	return refs, nil
}

// WithRef returns a copy of p holding r.
func (p PropertyValue) WithRef(r Ref) PropertyValue {
	raw, _ := r.MarshalJSON()
	p.Value = raw
	return p
}

// WithRefArray returns a copy of p holding refs. A nil slice is written as
// an empty array.
func (p PropertyValue) WithRefArray(refs []Ref) PropertyValue {
	if refs == nil {
		refs = []Ref{}
	}
	raw, _ := json.Marshal(refs)
	p.Value = raw
	return p
}

// RefProperty builds a scalar reference property.
func RefProperty(r Ref) PropertyValue {
	return PropertyValue{Type: TypeEntityRef}.WithRef(r)
}

// RefArrayProperty builds an array-of-references property.
func RefArrayProperty(refs ...Ref) PropertyValue {
	return PropertyValue{Type: TypeEntityRefArray}.WithRefArray(refs)
}

func wrapMalformed(err error) error {
	if err == nil || errors.Is(err, ErrMalformedReference) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrMalformedReference, err)
}
