package options

import (
	"context"
	"reflect"
	"testing"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
)

func storeDataset() *bom.Dataset {
	return bom.NewDataset([]*bom.EngineProgram{
		{
			Name: "LM2500",
			Configs: []*bom.Configuration{
				{
					Label: "Base",
					ESNs: []*bom.ESN{
						{Serial: "E1", ShipDate: "15/03/2026"},
						{Serial: "E2", ShipDate: "10/01/2027"},
						{Serial: "E3", ShipDate: "bogus"},
					},
					Parts: []*bom.Part{
						{
							PartNumber: "ROOT-1",
							Supplier:   "Acme",
							HWOwners:   bom.OwnerList{"Propulsion", "Controls"},
							Children: []*bom.Part{
								{PartNumber: "MID-1", RMSupplier: "RMX", RawType: "Titanium"},
							},
						},
					},
				},
			},
		},
		{
			Name: "LM6000",
			Configs: []*bom.Configuration{
				{
					Label: "PF",
					ESNs:  []*bom.ESN{{Serial: "E9", ShipDate: "01/06/2028"}},
					Parts: []*bom.Part{
						{PartNumber: "ROOT-9", Supplier: "SubCo", RMSupplier: "RMY", RawType: "Inconel"},
					},
				},
			},
		},
	}, "store-v1")
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), storeDataset(), nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDistinctValuesWildcard(t *testing.T) {
	s := newTestStore(t)

	got, err := s.DistinctValues(context.Background(), filter.DimRMSuppliers, filter.Snapshot{})
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if want := []string{"RMX", "RMY"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rm suppliers = %v, want %v", got, want)
	}
}

func TestDistinctValuesNarrowedByOtherDimension(t *testing.T) {
	s := newTestStore(t)

	snap := filter.Snapshot{ProductLines: filter.NewSet("LM2500")}
	got, err := s.DistinctValues(context.Background(), filter.DimRMSuppliers, snap)
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if want := []string{"RMX"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rm suppliers under LM2500 = %v, want %v", got, want)
	}
}

func TestDistinctValuesExcludesOwnFilter(t *testing.T) {
	s := newTestStore(t)

	// Selecting one supplier must not hide the other supplier choices.
	snap := filter.Snapshot{Suppliers: filter.NewSet("Acme")}
	got, err := s.DistinctValues(context.Background(), filter.DimSuppliers, snap)
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if want := []string{"Acme", "SubCo"}; !reflect.DeepEqual(got, want) {
		t.Errorf("suppliers = %v, want %v", got, want)
	}
}

func TestDistinctOwnersFannedOut(t *testing.T) {
	s := newTestStore(t)

	got, err := s.DistinctValues(context.Background(), filter.DimHWOwners, filter.Snapshot{})
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if want := []string{"Controls", "Propulsion"}; !reflect.DeepEqual(got, want) {
		t.Errorf("owners = %v, want %v", got, want)
	}
}

func TestDistinctYearsSkipUnparseable(t *testing.T) {
	s := newTestStore(t)

	got, err := s.DistinctValues(context.Background(), filter.DimYears, filter.Snapshot{})
	if err != nil {
		t.Fatalf("DistinctValues failed: %v", err)
	}
	if want := []string{"2026", "2027", "2028"}; !reflect.DeepEqual(got, want) {
		t.Errorf("years = %v, want %v", got, want)
	}
}

func TestDistinctValuesUnknownDimension(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.DistinctValues(context.Background(), "color", filter.Snapshot{}); err == nil {
		t.Error("expected error for unknown dimension")
	}
}
