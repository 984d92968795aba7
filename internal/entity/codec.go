package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Top-level document keys modelled by Entity. Anything else is carried
// through in Entity.extra.
const (
	keyFactoryHash    = "tempHash"
	keyBlueprintHash  = "tbluHash"
	keyRootEntity     = "rootEntity"
	keyEntities       = "entities"
	keyExternalScenes = "externalScenes"
	keyComments       = "comments"
)

// MarshalJSON implements json.Marshaler.
func (e *Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.extra)+6)
	for k, v := range e.extra {
		out[k] = v
	}
	scenes := e.ExternalScenes
	if scenes == nil {
		scenes = []string{}
	}
	fields := map[string]any{
		keyRootEntity:     e.RootEntity,
		keyEntities:       e.Entities,
		keyExternalScenes: scenes,
	}
	if e.FactoryHash != "" {
		fields[keyFactoryHash] = e.FactoryHash
	}
	if e.BlueprintHash != "" {
		fields[keyBlueprintHash] = e.BlueprintHash
	}
	if len(e.Comments) > 0 {
		fields[keyComments] = e.Comments
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entity{}
	decode := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}
	for key, dst := range map[string]any{
		keyFactoryHash:    &e.FactoryHash,
		keyBlueprintHash:  &e.BlueprintHash,
		keyRootEntity:     &e.RootEntity,
		keyEntities:       &e.Entities,
		keyExternalScenes: &e.ExternalScenes,
		keyComments:       &e.Comments,
	} {
		if err := decode(key, dst); err != nil {
			return err
		}
	}
	if len(raw) > 0 {
		e.extra = raw
	}
	return nil
}

// subEntityKeys are the JSON keys modelled by SubEntity's struct fields.
var subEntityKeys = []string{
	"parent", "name", "factory", "blueprint", "editorOnly",
	"properties", "platformSpecificProperties",
	"events", "inputCopying", "outputCopying",
	"propertyAliases", "exposedEntities", "exposedInterfaces", "subsets",
}

// subEntityFields has SubEntity's layout without its JSON methods.
type subEntityFields SubEntity

// MarshalJSON writes the modelled fields in declaration order followed by
// the unmodelled ones in key order.
func (s SubEntity) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(subEntityFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.extra) == 0 {
		return raw, nil
	}
	var buf bytes.Buffer
	buf.Write(raw[:len(raw)-1])
	for _, k := range slices.Sorted(maps.Keys(s.extra)) {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(s.extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SubEntity) UnmarshalJSON(data []byte) error {
	var fields subEntityFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range subEntityKeys {
		delete(raw, k)
	}
	*s = SubEntity(fields)
	if len(raw) > 0 {
		s.extra = raw
	}
	return nil
}

// Decode parses an entity document.
func Decode(data []byte) (*Entity, error) {
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding entity: %w", err)
	}
	return &e, nil
}

// Encode serialises an entity document with tab indentation.
func Encode(e *Entity) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding entity: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "\t"); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// DecodeClipboard parses copied data and checks that its root is among the
// copied entities.
func DecodeClipboard(data []byte) (*CopiedData, error) {
	var cd CopiedData
	if err := json.Unmarshal(data, &cd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClipboard, err)
	}
	if !cd.Data.Has(cd.RootEntity) {
		return nil, fmt.Errorf("%w: root %q is not among the copied entities", ErrInvalidClipboard, cd.RootEntity)
	}
	return &cd, nil
}

// EncodeClipboard serialises copied data as compact JSON.
func EncodeClipboard(cd *CopiedData) ([]byte, error) {
	return json.Marshal(cd)
}
