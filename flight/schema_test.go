package flight

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hangar-lab/demandview-go/bom"
)

func testDataset(t *testing.T) *bom.Dataset {
	t.Helper()
	return bom.NewDataset([]*bom.EngineProgram{
		{
			Name: "LM2500",
			Configs: []*bom.Configuration{
				{
					Label: "Base",
					ESNs: []*bom.ESN{
						{Serial: "E1", ShipDate: "15/03/2026"},
						{Serial: "E2", ShipDate: "20/07/2027"},
					},
					Parts: []*bom.Part{
						{
							PartNumber: "ROOT-1",
							Supplier:   "Acme",
							HWOwners:   bom.OwnerList{"Propulsion"},
							QPE:        2,
							Children: []*bom.Part{
								{PartNumber: "MID-1", RMSupplier: "RMX", RawType: "Titanium"},
							},
						},
					},
				},
			},
		},
	}, "test-v1")
}

func TestViewSchemaSelection(t *testing.T) {
	if viewSchema(ViewRawType) != demandSchema || viewSchema(ViewRMSupplier) != demandSchema {
		t.Error("aggregation views must stream the demand schema")
	}
	if viewSchema(ViewSupplierTable) != tableSchema || viewSchema(ViewHWOwnerTable) != tableSchema {
		t.Error("table views must stream the table schema")
	}
	if viewSchema(ViewFlatBOM) != flatSchema {
		t.Error("flat view must stream the flat schema")
	}
}

func TestBuildViewRecordsRawType(t *testing.T) {
	s := NewServer(Config{Dataset: testDataset(t), Allocator: memory.NewGoAllocator()})

	records, err := s.buildViewRecords(&TicketData{View: ViewRawType})
	if err != nil {
		t.Fatalf("buildViewRecords failed: %v", err)
	}
	defer releaseAll(records)

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	// Titanium in 2026 and 2027, one unit per ESN.
	if rec.NumRows() != 2 {
		t.Fatalf("got %d rows, want 2", rec.NumRows())
	}
	keys := rec.Column(0).(*array.String)
	counts := rec.Column(2).(*array.Int64)
	for i := 0; i < int(rec.NumRows()); i++ {
		if keys.Value(i) != "Titanium" {
			t.Errorf("row %d key = %q, want Titanium", i, keys.Value(i))
		}
		if counts.Value(i) != 1 {
			t.Errorf("row %d count = %d, want 1", i, counts.Value(i))
		}
	}
}

func TestBuildViewRecordsSupplierTable(t *testing.T) {
	s := NewServer(Config{Dataset: testDataset(t), Allocator: memory.NewGoAllocator()})

	records, err := s.buildViewRecords(&TicketData{View: ViewSupplierTable})
	if err != nil {
		t.Fatalf("buildViewRecords failed: %v", err)
	}
	defer releaseAll(records)

	rec := records[0]
	// ROOT-1 under Acme, one row per ship year, demand = 1 ESN x qpe 2.
	if rec.NumRows() != 2 {
		t.Fatalf("got %d rows, want 2", rec.NumRows())
	}
	demand := rec.Column(4).(*array.Int64)
	for i := 0; i < int(rec.NumRows()); i++ {
		if demand.Value(i) != 2 {
			t.Errorf("row %d demand = %d, want 2", i, demand.Value(i))
		}
	}
}

func TestBuildViewRecordsFlatBOM(t *testing.T) {
	s := NewServer(Config{Dataset: testDataset(t), Allocator: memory.NewGoAllocator()})

	records, err := s.buildViewRecords(&TicketData{View: ViewFlatBOM})
	if err != nil {
		t.Fatalf("buildViewRecords failed: %v", err)
	}
	defer releaseAll(records)

	rec := records[0]
	if rec.NumRows() != 2 {
		t.Fatalf("got %d rows, want 2 (ROOT-1 and MID-1)", rec.NumRows())
	}

	parts := rec.Column(3).(*array.String)
	levels := rec.Column(5).(*array.Int32)
	suppliers := rec.Column(6).(*array.String)
	if parts.Value(0) != "ROOT-1" || levels.Value(0) != 1 {
		t.Errorf("row 0 = %s L%d, want ROOT-1 L1", parts.Value(0), levels.Value(0))
	}
	// MID-1 inherits the effective supplier from its parent.
	if parts.Value(1) != "MID-1" || suppliers.Value(1) != "Acme" {
		t.Errorf("row 1 = %s supplier %q, want MID-1 with Acme", parts.Value(1), suppliers.Value(1))
	}
}

func TestBuildFlatRecordsBatching(t *testing.T) {
	parts := make([]bom.FlatPart, 25)
	for i := range parts {
		parts[i] = bom.FlatPart{Program: "P", Config: "C", Module: "M", PartNumber: "PN", Level: 1, QPE: 1}
	}

	records := buildFlatRecords(memory.NewGoAllocator(), parts, 10)
	defer releaseAll(records)

	if len(records) != 3 {
		t.Fatalf("got %d batches, want 3", len(records))
	}
	if records[2].NumRows() != 5 {
		t.Errorf("last batch has %d rows, want 5", records[2].NumRows())
	}
}
