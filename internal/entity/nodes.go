package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Nodes is an insertion-ordered map of sub-entity id to sub-entity.
// The zero value is an empty map ready for use.
type Nodes struct {
	order []string
	byID  map[string]*SubEntity
}

// Len returns the number of sub-entities.
func (n *Nodes) Len() int { return len(n.order) }

// Has reports whether id is present.
func (n *Nodes) Has(id string) bool {
	_, ok := n.byID[id]
	return ok
}

// Get returns the sub-entity stored under id.
func (n *Nodes) Get(id string) (*SubEntity, bool) {
	s, ok := n.byID[id]
	return s, ok
}

// Set stores s under id. A new id is appended; an existing id keeps its
// position.
func (n *Nodes) Set(id string, s *SubEntity) {
	if n.byID == nil {
		n.byID = make(map[string]*SubEntity)
	}
	if _, ok := n.byID[id]; !ok {
		n.order = append(n.order, id)
	}
	n.byID[id] = s
}

// Delete removes id, preserving the order of the remaining entries.
func (n *Nodes) Delete(id string) {
	if _, ok := n.byID[id]; !ok {
		return
	}
	delete(n.byID, id)
	if i := slices.Index(n.order, id); i >= 0 {
		n.order = slices.Delete(n.order, i, i+1)
	}
}

// IDs returns the ids in insertion order. The slice is a copy.
func (n *Nodes) IDs() []string {
	return slices.Clone(n.order)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (n Nodes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range n.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(n.byID[id])
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", id, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, recording key order.
func (n *Nodes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("entities: expected object, got %v", tok)
	}
	*n = Nodes{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := tok.(string)
		var s SubEntity
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("entity %s: %w", id, err)
		}
		if n.Has(id) {
			return fmt.Errorf("entity %s: duplicate id", id)
		}
		n.Set(id, &s)
	}
	_, err = dec.Token()
	return err
}
