package terminal

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type registryOp struct {
	Kind int // 0 create, 1 remove, 2 set active
	Arg  int
}

// Any interleaving of create, remove and activate must leave the registry
// with unique ids and an active id that resolves to a present session, or
// empty when the registry is empty.
func TestRegistryInvariantsUnderRandomOps(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	genOp := gopter.CombineGens(
		gen.IntRange(0, 2),
		gen.IntRange(0, 12),
	).Map(func(vals []interface{}) registryOp {
		return registryOp{Kind: vals[0].(int), Arg: vals[1].(int)}
	})

	properties.Property("active id always resolves", prop.ForAll(
		func(ops []registryOp) bool {
			m, _ := newTestMux()
			for _, op := range ops {
				id := fmt.Sprintf("t%d", op.Arg)
				switch op.Kind {
				case 0:
					m.CreateSession()
				case 1:
					m.RemoveSession(id)
				case 2:
					m.SetActive(id)
				}
			}

			sessions := m.Sessions()
			active := m.ActiveID()
			if len(sessions) == 0 {
				return active == ""
			}
			seen := make(map[string]bool, len(sessions))
			activeFound := false
			for _, s := range sessions {
				if seen[s.ID] {
					return false
				}
				seen[s.ID] = true
				if s.ID == active {
					activeFound = true
				}
			}
			return activeFound
		},
		gen.SliceOf(genOp),
	))

	properties.TestingRun(t)
}
