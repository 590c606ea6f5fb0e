package aggregate

import (
	"fmt"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
	"github.com/hangar-lab/demandview-go/walk"
)

// Dimension selects an aggregation mode.
type Dimension string

const (
	// DimensionRawType groups by raw-material type; contributing sources
	// are raw-material suppliers.
	DimensionRawType Dimension = "rawType"

	// DimensionRMSupplier groups by raw-material supplier. When
	// Request.RawType is set, only parts of that raw type contribute.
	DimensionRMSupplier Dimension = "rmSupplier"

	// DimensionSupplierTable groups by the level-1 part's supplier for
	// the table view; demand is ESN count x qpe.
	DimensionSupplierTable Dimension = "supplierTable"

	// DimensionHWOwnerTable groups by the level-1 part's hardware
	// owner(s); each listed owner receives the full ESN x qpe
	// contribution.
	DimensionHWOwnerTable Dimension = "hwOwnerTable"
)

// Request names the aggregation a caller wants.
type Request struct {
	// Dimension selects the mode. REQUIRED.
	Dimension Dimension

	// RawType scopes DimensionRMSupplier to one raw type.
	// Ignored by the other modes.
	RawType string
}

// Result carries one pass's output: keyed entries always, level-1 table
// rows for the table modes.
type Result struct {
	Entries map[string]*Entry
	Rows    []TableRow
}

// Run executes one aggregation pass. It treats the dataset and snapshot as
// read-only and returns freshly built collections; identical inputs yield
// identical output on every call.
func Run(ds *bom.Dataset, snap filter.Snapshot, req Request) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("aggregate: nil dataset")
	}
	pred := filter.NewPredicate(snap, ds.Canonical)

	switch req.Dimension {
	case DimensionRawType:
		return &Result{Entries: runTree(ds, pred, req.RawType, creditRawType)}, nil
	case DimensionRMSupplier:
		return &Result{Entries: runTree(ds, pred, req.RawType, creditRMSupplier)}, nil
	case DimensionSupplierTable:
		entries, rows := runTable(ds, pred, false)
		return &Result{Entries: entries, Rows: rows}, nil
	case DimensionHWOwnerTable:
		entries, rows := runTable(ds, pred, true)
		return &Result{Entries: entries, Rows: rows}, nil
	default:
		return nil, fmt.Errorf("aggregate: unknown dimension %q", req.Dimension)
	}
}

// creditFunc decides, for one visit, the entry key and recorded source.
// ok=false drops the contribution: a missing dimension value is expected,
// never an error.
type creditFunc func(ev walk.VisitEvent, scopeRawType string) (key, source string, ok bool)

func creditRawType(ev walk.VisitEvent, _ string) (string, string, bool) {
	if ev.Part.RawType == "" {
		return "", "", false
	}
	return ev.Part.RawType, ev.Part.RMSupplier, true
}

func creditRMSupplier(ev walk.VisitEvent, scopeRawType string) (string, string, bool) {
	if ev.Part.RMSupplier == "" {
		return "", "", false
	}
	if scopeRawType != "" && ev.Part.RawType != scopeRawType {
		return "", "", false
	}
	return ev.Part.RMSupplier, ev.InheritedSupplier, true
}

// runTree walks the full tree and credits one unit per qualifying
// (part, ESN) pair. Leaf-dimension filters are applied here, at credit time:
// they never pruned the traversal, only the contribution.
func runTree(ds *bom.Dataset, pred *filter.Predicate, scopeRawType string, credit creditFunc) map[string]*Entry {
	entries := make(map[string]*Entry)

	for _, prog := range ds.Programs {
		if prog == nil || !pred.AcceptsProgram(prog.Name) {
			continue
		}
		for _, cfg := range prog.Configs {
			if cfg == nil || !pred.AcceptsConfig(cfg.Label) {
				continue
			}
			for _, ev := range walk.Walk(cfg.Parts, "", cfg.ESNs) {
				key, source, ok := credit(ev, scopeRawType)
				if !ok {
					continue
				}
				if !allowsLeaf(pred, ev) {
					continue
				}
				for _, esn := range ev.ESNs {
					if esn == nil || !pred.AcceptsYear(esn.Year) {
						continue
					}
					e := entries[key]
					if e == nil {
						e = newEntry(key)
						entries[key] = e
					}
					e.credit(esn.Year, 1, ev.Level, source)
				}
			}
		}
	}
	return entries
}

// allowsLeaf applies every leaf-dimension filter to a candidate
// contribution.
func allowsLeaf(pred *filter.Predicate, ev walk.VisitEvent) bool {
	return pred.AllowsSupplier(ev.InheritedSupplier) &&
		pred.AllowsRMSupplier(ev.Part.RMSupplier) &&
		pred.AllowsAnyOwner(ev.Part.HWOwners) &&
		pred.AllowsPart(ev.Part.PartNumber) &&
		pred.AllowsModule(ev.Root.PartNumber)
}

// runTable builds the supplier/hwOwner table view. Keys come from the
// level-1 part only; the tree is not descended for the key. Demand is ESN
// count x qpe, a different multiplier than the RM-side modes use.
func runTable(ds *bom.Dataset, pred *filter.Predicate, byOwner bool) (map[string]*Entry, []TableRow) {
	entries := make(map[string]*Entry)
	var rows []TableRow

	for _, prog := range ds.Programs {
		if prog == nil || !pred.AcceptsProgram(prog.Name) {
			continue
		}
		for _, cfg := range prog.Configs {
			if cfg == nil || !pred.AcceptsConfig(cfg.Label) {
				continue
			}

			// Qualifying ESN count per year, shared by every root part
			// in this configuration.
			esnYears := make(map[int]int)
			for _, esn := range cfg.ESNs {
				if esn == nil || !pred.AcceptsYear(esn.Year) {
					continue
				}
				esnYears[esn.Year]++
			}
			if len(esnYears) == 0 {
				continue
			}

			for _, p := range cfg.Parts {
				if p == nil {
					continue
				}
				if !pred.AllowsPart(p.PartNumber) || !pred.AllowsModule(p.PartNumber) {
					continue
				}
				if !pred.AllowsSupplier(p.Supplier) || !pred.AllowsRMSupplier(p.RMSupplier) {
					continue
				}

				if byOwner {
					if !pred.AllowsAnyOwner(p.HWOwners) {
						continue
					}
					// Fan-out: each listed owner receives the full
					// ESN x qpe contribution, not a split.
					for _, owner := range p.HWOwners {
						if !pred.AllowsOwner(owner) {
							continue
						}
						rows = append(rows, creditTablePart(entries, owner, p, esnYears))
					}
				} else {
					if p.Supplier == "" || !pred.AllowsAnyOwner(p.HWOwners) {
						continue
					}
					rows = append(rows, creditTablePart(entries, p.Supplier, p, esnYears))
				}
			}
		}
	}
	return entries, rows
}

// creditTablePart credits one level-1 part to its key entry and returns the
// matching table row.
func creditTablePart(entries map[string]*Entry, key string, p *bom.Part, esnYears map[int]int) TableRow {
	row := TableRow{
		Key:         key,
		PartNumber:  p.PartNumber,
		Description: p.Description,
		YearCounts:  make(map[int]int, len(esnYears)),
	}
	e := entries[key]
	if e == nil {
		e = newEntry(key)
		entries[key] = e
	}
	for year, count := range esnYears {
		demand := count * p.QPE
		row.YearCounts[year] += demand
		row.Total += demand
		e.credit(year, demand, 1, "")
	}
	return row
}
