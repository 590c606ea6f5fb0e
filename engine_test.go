package demandview

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
)

func buildTestDataset(t *testing.T) *bom.Dataset {
	t.Helper()
	ds, err := NewDatasetBuilder().
		Version("eng-v1").
		Program("LM2500").Alias("LM25").
		Config("Base").
		ESN("E1", "15/03/2026").
		ESN("E2", "20/07/2027").
		Root(&bom.Part{
			PartNumber: "ROOT-1",
			Supplier:   "Acme",
			HWOwners:   bom.OwnerList{"Propulsion"},
			QPE:        2,
			Children: []*bom.Part{
				{PartNumber: "MID-1", RMSupplier: "RMX", RawType: "Titanium"},
				{PartNumber: "MID-2", RMSupplier: "RMY", RawType: "Inconel"},
			},
		}).
		Program("LM6000").
		Config("PF").
		ESN("E9", "01/06/2028").
		Root(&bom.Part{
			PartNumber: "ROOT-9",
			Supplier:   "SubCo",
			RMSupplier: "RMX",
			RawType:    "Titanium",
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return ds
}

func newTestEngine(t *testing.T, memo bool) *Engine {
	t.Helper()
	e, err := New(EngineConfig{EnableMemo: memo})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestAggregateRawType(t *testing.T) {
	e := newTestEngine(t, false)
	ds := buildTestDataset(t)

	res, err := e.Aggregate(context.Background(), ds, filter.Snapshot{},
		Request{Dimension: DimensionRawType})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// Titanium: MID-1 per LM2500 ESN (2) + ROOT-9 per LM6000 ESN (1).
	if want := []string{"Titanium", "Inconel"}; !reflect.DeepEqual(res.Labels, want) {
		t.Errorf("labels = %v, want %v", res.Labels, want)
	}
	if res.TotalsByKey["Titanium"] != 3 || res.TotalsByKey["Inconel"] != 2 {
		t.Errorf("totals = %v", res.TotalsByKey)
	}
	if want := []string{"2026", "2027", "2028"}; !reflect.DeepEqual(res.Years, want) {
		t.Errorf("years = %v, want %v", res.Years, want)
	}
}

func TestAggregateFilteredToSupplier(t *testing.T) {
	e := newTestEngine(t, false)
	ds := buildTestDataset(t)

	snap := filter.Snapshot{Suppliers: filter.NewSet("Acme")}
	res, err := e.Aggregate(context.Background(), ds, snap,
		Request{Dimension: DimensionRawType})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// ROOT-9 carries SubCo, so only LM2500 contributes.
	if res.TotalsByKey["Titanium"] != 2 {
		t.Errorf("Titanium total = %d, want 2", res.TotalsByKey["Titanium"])
	}
}

func TestAggregateMemoizedRepeat(t *testing.T) {
	e := newTestEngine(t, true)
	ds := buildTestDataset(t)
	req := Request{Dimension: DimensionRMSupplier, RawType: "Titanium", TopN: 5}

	first, err := e.Aggregate(context.Background(), ds, filter.Snapshot{}, req)
	if err != nil {
		t.Fatalf("first Aggregate failed: %v", err)
	}
	second, err := e.Aggregate(context.Background(), ds, filter.Snapshot{}, req)
	if err != nil {
		t.Fatalf("second Aggregate failed: %v", err)
	}

	if !reflect.DeepEqual(first.Labels, second.Labels) ||
		!reflect.DeepEqual(first.TotalsByKey, second.TotalsByKey) ||
		!reflect.DeepEqual(first.Series, second.Series) {
		t.Errorf("memoized result diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
	if first.TotalsByKey["RMX"] != 3 {
		t.Errorf("RMX Titanium-scoped total = %d, want 3", first.TotalsByKey["RMX"])
	}
}

func TestAggregateValidation(t *testing.T) {
	e := newTestEngine(t, false)
	ds := buildTestDataset(t)

	if _, err := e.Aggregate(context.Background(), nil, filter.Snapshot{},
		Request{Dimension: DimensionRawType}); !errors.Is(err, ErrNilDataset) {
		t.Errorf("nil dataset: got %v, want ErrNilDataset", err)
	}
	if _, err := e.Aggregate(context.Background(), ds, filter.Snapshot{},
		Request{Dimension: "exploded"}); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("unknown dimension: got %v, want ErrUnknownDimension", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Aggregate(ctx, ds, filter.Snapshot{},
		Request{Dimension: DimensionRawType}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v", err)
	}
}

func TestAggregateFullReslice(t *testing.T) {
	e := newTestEngine(t, false)
	ds := buildTestDataset(t)

	p, err := e.AggregateFull(context.Background(), ds, filter.Snapshot{},
		Request{Dimension: DimensionRawType})
	if err != nil {
		t.Fatalf("AggregateFull failed: %v", err)
	}

	top1 := p.Result(1)
	if len(top1.Labels) != 1 || top1.Labels[0] != "Titanium" {
		t.Errorf("top-1 = %v", top1.Labels)
	}
	all := p.Result(0)
	if len(all.Labels) != 2 {
		t.Errorf("show-all after top-1 = %v, want both keys", all.Labels)
	}
}

func TestTableRows(t *testing.T) {
	e := newTestEngine(t, false)
	ds := buildTestDataset(t)

	rows, err := e.TableRows(context.Background(), ds, filter.Snapshot{}, DimensionSupplierTable)
	if err != nil {
		t.Fatalf("TableRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Acme: 2 ESNs x qpe 2 = 4 beats SubCo: 1 ESN x qpe 1.
	if rows[0].Key != "Acme" || rows[0].Total != 4 {
		t.Errorf("row 0 = %s/%d, want Acme/4", rows[0].Key, rows[0].Total)
	}
	if rows[1].Key != "SubCo" || rows[1].Total != 1 {
		t.Errorf("row 1 = %s/%d, want SubCo/1", rows[1].Key, rows[1].Total)
	}

	if _, err := e.TableRows(context.Background(), ds, filter.Snapshot{}, DimensionRawType); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("non-table dimension: got %v, want ErrUnknownDimension", err)
	}
}

func TestAggregateAliasFilter(t *testing.T) {
	e := newTestEngine(t, false)
	ds := buildTestDataset(t)

	// The alias form must select the same program as the canonical name.
	snap := filter.Snapshot{ProductLines: filter.NewSet("LM25")}
	res, err := e.Aggregate(context.Background(), ds, snap,
		Request{Dimension: DimensionRawType})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if res.TotalsByKey["Titanium"] != 2 || res.TotalsByKey["Inconel"] != 2 {
		t.Errorf("alias-filtered totals = %v", res.TotalsByKey)
	}
}
