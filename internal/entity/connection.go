package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ConnectionTarget is one entry of an event, input-copying or
// output-copying list. Constant, when set, is a value passed along the
// connection; it does not affect graph structure.
type ConnectionTarget struct {
	Ref      Ref
	Constant *PropertyValue
}

type constantTargetJSON struct {
	Ref   Ref            `json:"ref"`
	Value *PropertyValue `json:"value"`
}

func (t ConnectionTarget) clone() ConnectionTarget {
	if t.Constant != nil {
		pv := *t.Constant
		pv.Value = slices.Clone(pv.Value)
		t.Constant = &pv
	}
	return t
}

// MarshalJSON writes a bare reference, or {"ref", "value"} when a constant
// is attached.
func (t ConnectionTarget) MarshalJSON() ([]byte, error) {
	if t.Constant == nil {
		return t.Ref.MarshalJSON()
	}
	return json.Marshal(constantTargetJSON{Ref: t.Ref, Value: t.Constant})
}

// UnmarshalJSON accepts either form written by MarshalJSON. An object is a
// constant-carrying target only when it has a "value" key; otherwise it is a
// Full reference.
func (t *ConnectionTarget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedReference, err)
		}
		if _, ok := fields["value"]; ok {
			var c constantTargetJSON
			if err := json.Unmarshal(data, &c); err != nil {
				if errors.Is(err, ErrMalformedReference) {
					return err
				}
				return fmt.Errorf("%w: %v", ErrMalformedReference, err)
			}
			*t = ConnectionTarget{Ref: c.Ref, Constant: c.Value}
			return nil
		}
	}
	var ref Ref
	if err := ref.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = ConnectionTarget{Ref: ref}
	return nil
}
