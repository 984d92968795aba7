package ops

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// randomDoc builds a consistent tree of n entities whose references point at
// random other entities through every relation kind.
func randomDoc(rng *rand.Rand, n int) *entity.Entity {
	d := newDoc("e0")
	ids := []string{"e0"}
	pick := func() string { return ids[rng.Intn(len(ids))] }
	for i := 1; i < n; i++ {
		id := fmt.Sprintf("e%d", i)
		ids = append(ids, id)
		add(d, id, ids[rng.Intn(i)])
	}
	for _, id := range ids {
		s, _ := d.Entities.Get(id)
		switch rng.Intn(4) {
		case 0:
			withProp("ref", entity.RefProperty(short(pick())))(s)
		case 1:
			withProp("refs", entity.RefArrayProperty(short(pick()), short(pick()), short(pick())))(s)
		case 2:
			withEvent("OnTick", "Do", short(pick()), short(pick()))(s)
			withSubset("Set", pick(), pick())(s)
		case 3:
			withExposedEntity("Exp", short(pick()))(s)
			withInterface("IFace", pick())(s)
			withAlias("Alias", entity.PropertyAlias{OriginalProperty: "m", OriginalEntity: short(pick())})(s)
			withPlatformProp("pc", "p", entity.RefProperty(entity.FullRef(pick(), "", "")))(s)
		}
	}
	return d
}

// TestInvariants_RandomDocuments verifies, over seeded random documents, that
// delete and paste keep every local reference resolvable and that deleted
// ids are gone without a trace.
func TestInvariants_RandomDocuments(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			d := randomDoc(rng, 5+rng.Intn(20))
			requireConsistent(t, d)

			ids := d.Entities.IDs()
			target := ids[1+rng.Intn(len(ids)-1)]
			cd, err := Copy(d, target)
			require.NoError(t, err)

			res, err := Delete(d, target)
			require.NoError(t, err)
			requireConsistent(t, d)
			idx, err := Index(d)
			require.NoError(t, err)
			for _, gone := range res.Removed {
				assert.False(t, d.Entities.Has(gone))
				assert.Empty(t, idx[gone], "references to %s survived", gone)
			}

			remaining := d.Entities.IDs()
			parent := remaining[rng.Intn(len(remaining))]
			pasted, err := Paste(d, PasteParams{Parent: parent, Data: cd})
			require.NoError(t, err)
			requireConsistent(t, d)
			assert.Len(t, pasted.Changelist, cd.Data.Len())

			sub, err := Descendants(d, pasted.Root, nil)
			require.NoError(t, err)
			assert.ElementsMatch(t, valuesOf(pasted.Changelist), sub)
		})
	}
}

func valuesOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
