// Package demandview aggregates raw-material and supplier demand from
// hierarchical engine bills of material.
//
// A dataset is a tree of engine programs, configurations, shipped units
// (ESNs), and up to five levels of parts. The engine walks that tree under
// an active filter selection and produces render-ready results: year-bucketed
// demand per raw-material type, raw-material supplier, level-1 supplier, or
// hardware owner.
//
// The package simplifies building demand views by:
//   - Providing a fluent dataset builder for programs, configs, ESNs, and parts
//   - Treating aggregation as a pure function of (dataset, filters, request)
//   - Projecting results to sorted top-N chart series and paged table rows
//   - Optionally serving datasets and results over Apache Arrow Flight
//
// # Quick Start
//
// Build a dataset and aggregate it in a few lines:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/hangar-lab/demandview-go"
//	    "github.com/hangar-lab/demandview-go/bom"
//	    "github.com/hangar-lab/demandview-go/filter"
//	)
//
//	func main() {
//	    ds, err := demandview.NewDatasetBuilder().
//	        Version("2026-08").
//	        Program("LM2500").Alias("LM25").
//	            Config("Base").
//	                ESN("E1001", "15/03/2026").
//	                Root(&bom.Part{
//	                    PartNumber: "FAN-CASE-1",
//	                    Supplier:   "Acme Castings",
//	                    HWOwners:   bom.OwnerList{"Propulsion"},
//	                    Children: []*bom.Part{{
//	                        PartNumber: "BLISK-9",
//	                        RMSupplier: "TitanWorks",
//	                        RawType:    "Titanium",
//	                        QPE:        2,
//	                    }},
//	                }).
//	        Build()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    engine, err := demandview.New(demandview.EngineConfig{EnableMemo: true})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer engine.Close()
//
//	    res, err := engine.Aggregate(context.Background(), ds, filter.Snapshot{},
//	        demandview.Request{Dimension: demandview.DimensionRawType, TopN: 10})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Labels, res.TotalsByKey)
//	}
//
// # Filtering
//
// Filter selections live in a filterstate.Manager; each dimension holds a
// set of accepted values where an empty set means "everything". Program,
// configuration, and year filters narrow the traversal; supplier, owner,
// part, and module filters only decide which visits are credited, so a
// deep match is never hidden by its parents.
//
// # Serving
//
// NewServer registers Arrow Flight handlers on a caller-owned gRPC server,
// exposing the aggregation views and the flattened BOM as record streams.
package demandview
