package aggregate

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
)

// referenceTotals recomputes per-key totals for the tree modes with naive
// whole-tree recursion, the implementation the iterative engine must
// reproduce.
func referenceTotals(ds *bom.Dataset, snap filter.Snapshot, dim Dimension) map[string]int {
	pred := filter.NewPredicate(snap, ds.Canonical)
	totals := make(map[string]int)

	var visit func(p *bom.Part, level int, supplier string, root *bom.Part, esns []*bom.ESN)
	visit = func(p *bom.Part, level int, supplier string, root *bom.Part, esns []*bom.ESN) {
		if p == nil {
			return
		}
		eff := p.Supplier
		if eff == "" {
			eff = supplier
		}
		var key string
		switch dim {
		case DimensionRawType:
			key = p.RawType
		case DimensionRMSupplier:
			key = p.RMSupplier
		}
		if key != "" &&
			pred.AllowsSupplier(eff) && pred.AllowsRMSupplier(p.RMSupplier) &&
			pred.AllowsAnyOwner(p.HWOwners) && pred.AllowsPart(p.PartNumber) &&
			pred.AllowsModule(root.PartNumber) {
			for _, esn := range esns {
				if esn != nil && pred.AcceptsYear(esn.Year) {
					totals[key]++
				}
			}
		}
		if level < bom.MaxDepth {
			for _, c := range p.Children {
				visit(c, level+1, eff, root, esns)
			}
		}
	}

	for _, prog := range ds.Programs {
		if prog == nil || !pred.AcceptsProgram(prog.Name) {
			continue
		}
		for _, cfg := range prog.Configs {
			if cfg == nil || !pred.AcceptsConfig(cfg.Label) {
				continue
			}
			for _, p := range cfg.Parts {
				visit(p, 1, "", p, cfg.ESNs)
			}
		}
	}
	return totals
}

func randomPart(rng *rand.Rand, level int) *bom.Part {
	p := &bom.Part{PartNumber: fmt.Sprintf("PN-%d-%d", level, rng.Intn(1000))}
	if rng.Intn(2) == 0 {
		p.Supplier = fmt.Sprintf("S%d", rng.Intn(3))
	}
	if rng.Intn(2) == 0 {
		p.RMSupplier = fmt.Sprintf("RM%d", rng.Intn(4))
	}
	if rng.Intn(2) == 0 {
		p.RawType = []string{"Titanium", "Steel", "Inconel"}[rng.Intn(3)]
	}
	if level < bom.MaxDepth {
		for i := 0; i < rng.Intn(3); i++ {
			p.Children = append(p.Children, randomPart(rng, level+1))
		}
	}
	return p
}

func randomDataset(rng *rand.Rand) *bom.Dataset {
	var programs []*bom.EngineProgram
	for pi := 0; pi < 1+rng.Intn(2); pi++ {
		prog := &bom.EngineProgram{Name: fmt.Sprintf("PROG-%d", pi)}
		for ci := 0; ci < 1+rng.Intn(2); ci++ {
			cfg := &bom.Configuration{Label: fmt.Sprintf("CFG-%d", ci)}
			for ei := 0; ei < rng.Intn(4); ei++ {
				cfg.ESNs = append(cfg.ESNs, &bom.ESN{
					Serial:   fmt.Sprintf("E%d", ei),
					ShipDate: fmt.Sprintf("01/01/%d", 2024+rng.Intn(4)),
				})
			}
			for ri := 0; ri < 1+rng.Intn(3); ri++ {
				cfg.Parts = append(cfg.Parts, randomPart(rng, 1))
			}
			prog.Configs = append(prog.Configs, cfg)
		}
		programs = append(programs, prog)
	}
	return bom.NewDataset(programs, "")
}

// TestTreeModesMatchRecursiveReference cross-checks the iterative engine
// against the recursive reference on random trees, with and without an
// active year filter.
func TestTreeModesMatchRecursiveReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	snaps := []filter.Snapshot{
		{},
		{Years: filter.NewSet("2025", "2026")},
		{RMSuppliers: filter.NewSet("RM1", "RM2")},
	}

	for trial := 0; trial < 25; trial++ {
		ds := randomDataset(rng)
		for _, snap := range snaps {
			for _, dim := range []Dimension{DimensionRawType, DimensionRMSupplier} {
				res, err := Run(ds, snap, Request{Dimension: dim})
				if err != nil {
					t.Fatalf("trial %d: Run failed: %v", trial, err)
				}
				want := referenceTotals(ds, snap, dim)

				if len(res.Entries) != len(want) {
					t.Fatalf("trial %d dim %s: %d keys, reference has %d",
						trial, dim, len(res.Entries), len(want))
				}
				for key, total := range want {
					e := res.Entries[key]
					if e == nil || e.Total != total {
						got := 0
						if e != nil {
							got = e.Total
						}
						t.Errorf("trial %d dim %s key %q: total %d, reference %d",
							trial, dim, key, got, total)
					}
				}
			}
		}
	}
}
