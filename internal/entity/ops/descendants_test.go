package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// TestDescendants_TargetFirstThenDepthFirst verifies ordering: the target,
// then each child followed by its own subtree, children in document order.
func TestDescendants_TargetFirstThenDepthFirst(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	add(d, "b", "a")
	add(d, "c", "root")
	add(d, "a2", "a")
	add(d, "b1", "b")

	got, err := Descendants(d, "root", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "a", "b", "b1", "a2", "c"}, got)
}

// TestDescendants_LeafIsItsOwnSubtree verifies that a leaf yields only itself.
func TestDescendants_LeafIsItsOwnSubtree(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")

	got, err := Descendants(d, "a", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

// TestDescendants_IgnoresExternalParents verifies that a parent naming the
// same id in another scene is not a child edge.
func TestDescendants_IgnoresExternalParents(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	d.Entities.Set("x", &entity.SubEntity{Parent: entity.FullRef("a", "[other].pc_entitytype", "")})

	got, err := Descendants(d, "a", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

// TestDescendants_CyclicParentage verifies that a parent cycle terminates with
// ErrCyclicParentage instead of recursing forever.
func TestDescendants_CyclicParentage(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *entity.Entity)
	}{
		{
			name: "two-node cycle",
			build: func(d *entity.Entity) {
				add(d, "x", "y")
				add(d, "y", "x")
			},
		},
		{
			name: "self parent",
			build: func(d *entity.Entity) {
				add(d, "x", "x")
			},
		},
		{
			name: "cycle below target",
			build: func(d *entity.Entity) {
				add(d, "x", "y")
				add(d, "y", "z")
				add(d, "z", "x")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc("root")
			tt.build(d)

			_, err := Descendants(d, "x", nil)

			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrCyclicParentage))
		})
	}
}

// TestDescendants_NoSuchNode verifies the error for an unknown target.
func TestDescendants_NoSuchNode(t *testing.T) {
	_, err := Descendants(newDoc("root"), "missing", nil)

	assert.True(t, errors.Is(err, entity.ErrNoSuchNode))
}

// TestDescendants_ParentsAlwaysReachTarget verifies subtree completeness: every
// member's parent chain reaches the target, and no non-member's does.
func TestDescendants_ParentsAlwaysReachTarget(t *testing.T) {
	d := newDoc("root")
	add(d, "a", "root")
	add(d, "b", "a")
	add(d, "c", "b")
	add(d, "d", "root")
	add(d, "e", "d")

	got, err := Descendants(d, "a", nil)
	require.NoError(t, err)

	reaches := func(id string) bool {
		for cur := id; ; {
			if cur == "a" {
				return true
			}
			s := get(t, d, cur)
			next, ok := s.Parent.LocalTarget()
			if !ok {
				return false
			}
			cur = next
		}
	}
	members := subtreeSet(got)
	for _, id := range d.Entities.IDs() {
		assert.Equalf(t, members[id], reaches(id), "membership of %s", id)
	}
}
