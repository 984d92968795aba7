package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// TestReparent_MovesEntity verifies a successful move.
func TestReparent_MovesEntity(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	add(d, "b", "root")

	require.NoError(t, Reparent(d, "b", "a"))

	assert.Equal(t, short("a"), get(t, d, "b").Parent)
	got, err := Descendants(d, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

// TestReparent_Errors verifies the refusals and that the document is left
// unchanged.
func TestReparent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		parent  string
		wantErr error
	}{
		{"unknown entity", "ghost", "root", entity.ErrNoSuchNode},
		{"unknown parent", "a", "ghost", entity.ErrNoSuchNode},
		{"root entity", "root", "a", entity.ErrRootEntity},
		{"onto itself", "a", "a", entity.ErrCyclicParentage},
		{"under descendant", "a", "a1", entity.ErrCyclicParentage},
		{"carries dangling reference", "b", "root", entity.ErrDanglingReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc("root")
			add(d, "a", "root")
			add(d, "a1", "a")
			add(d, "b", "a", withProp("p", entity.RefProperty(short("ghost"))))
			before := snapshot(t, d)

			err := Reparent(d, tt.id, tt.parent)

			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, before, snapshot(t, d))
		})
	}
}

// TestReplace_StoresValidEntity verifies that a valid replacement is stored
// as a copy the caller can no longer mutate.
func TestReplace_StoresValidEntity(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	add(d, "b", "root")
	next := &entity.SubEntity{Name: "new", Parent: short("b")}

	res, err := Replace(d, "a", next)

	require.NoError(t, err)
	assert.True(t, res.Valid)
	next.Name = "mutated"
	assert.Equal(t, "new", get(t, d, "a").Name)
	assert.Equal(t, short("b"), get(t, d, "a").Parent)
}

// TestReplace_RejectsInvalidEntity verifies that an invalid replacement is
// reported as a result and not stored.
func TestReplace_RejectsInvalidEntity(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	before := snapshot(t, d)

	res, err := Replace(d, "a", &entity.SubEntity{Parent: short("ghost")})

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, entity.CodeDanglingReference, res.Code)
	assert.Equal(t, before, snapshot(t, d))
}

// TestReplace_Errors verifies operation faults.
func TestReplace_Errors(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	add(d, "a1", "a")

	_, err := Replace(d, "ghost", &entity.SubEntity{})
	assert.True(t, errors.Is(err, entity.ErrNoSuchNode))

	_, err = Replace(d, "a", &entity.SubEntity{Parent: short("a1")})
	assert.True(t, errors.Is(err, entity.ErrCyclicParentage))
	assert.Equal(t, short("root"), get(t, d, "a").Parent)
}
