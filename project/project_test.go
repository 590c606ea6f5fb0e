package project

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/hangar-lab/demandview-go/aggregate"
)

func testEntries() map[string]*aggregate.Entry {
	return map[string]*aggregate.Entry{
		"RMX": {
			Key:        "RMX",
			YearCounts: map[int]int{2026: 3, 2027: 2},
			Total:      5,
			LevelHits:  map[int]int{2: 5},
			Sources:    map[string]struct{}{"Acme": {}},
		},
		"RMY": {
			Key:        "RMY",
			YearCounts: map[int]int{2026: 5},
			Total:      5,
			LevelHits:  map[int]int{3: 5},
			Sources:    map[string]struct{}{"Beta": {}, "Acme": {}},
		},
		"RMZ": {
			Key:        "RMZ",
			YearCounts: map[int]int{2027: 1},
			Total:      1,
			LevelHits:  map[int]int{1: 1},
			Sources:    map[string]struct{}{},
		},
	}
}

// TestProjectionOrderDeterministic verifies descending-total order with
// lexicographic tie-breaking.
func TestProjectionOrderDeterministic(t *testing.T) {
	p := New(testEntries())
	want := []string{"RMX", "RMY", "RMZ"} // RMX and RMY tie on 5
	if got := p.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// TestTopNRetainsFullCollection verifies slicing does not lose the full
// sorted collection: a later "show all" projects from the same pass.
func TestTopNRetainsFullCollection(t *testing.T) {
	p := New(testEntries())

	top2 := p.Result(2)
	if len(top2.Labels) != 2 {
		t.Fatalf("top-2 labels = %v", top2.Labels)
	}
	if p.Len() != 3 {
		t.Errorf("projection lost entries: len %d, want 3", p.Len())
	}

	all := p.Result(0)
	if len(all.Labels) != 3 {
		t.Errorf("show-all labels = %v, want 3 entries", all.Labels)
	}
}

// TestResultSeriesAlignment verifies Series rows are parallel to Labels
// with zero fill for missing years.
func TestResultSeriesAlignment(t *testing.T) {
	res := New(testEntries()).Result(0)

	if !reflect.DeepEqual(res.Years, []string{"2026", "2027"}) {
		t.Fatalf("years = %v", res.Years)
	}
	if !reflect.DeepEqual(res.Series["2026"], []int{3, 5, 0}) {
		t.Errorf("2026 series = %v, want [3 5 0]", res.Series["2026"])
	}
	if !reflect.DeepEqual(res.Series["2027"], []int{2, 0, 1}) {
		t.Errorf("2027 series = %v, want [2 0 1]", res.Series["2027"])
	}
	if res.TotalsByKey["RMX"] != 5 {
		t.Errorf("RMX total = %d, want 5", res.TotalsByKey["RMX"])
	}

	meta := res.Meta["RMY"]
	if meta.Levels["L3"] != 5 {
		t.Errorf("RMY levels = %v, want L3:5", meta.Levels)
	}
	if !reflect.DeepEqual(meta.Sources, []string{"Acme", "Beta"}) {
		t.Errorf("RMY sources = %v, want sorted [Acme Beta]", meta.Sources)
	}
}

// TestResultIdempotent verifies repeated projection of the same pass is
// deep-equal.
func TestResultIdempotent(t *testing.T) {
	p := New(testEntries())
	a := p.Result(2)
	b := p.Result(2)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated Result calls diverged")
	}
}

// TestEmptyResult verifies an empty pass projects to an explicit empty
// state, not an error.
func TestEmptyResult(t *testing.T) {
	res := New(nil).Result(5)
	if len(res.Labels) != 0 || len(res.Years) != 0 {
		t.Errorf("empty projection = %+v", res)
	}
}

// TestSortRows verifies the table ordering rule.
func TestSortRows(t *testing.T) {
	rows := []aggregate.TableRow{
		{Key: "B", PartNumber: "P2", Total: 4},
		{Key: "A", PartNumber: "P1", Total: 4},
		{Key: "C", PartNumber: "P3", Total: 9},
	}
	sorted := SortRows(rows)
	if sorted[0].Key != "C" || sorted[1].Key != "A" || sorted[2].Key != "B" {
		t.Errorf("order = %s,%s,%s want C,A,B", sorted[0].Key, sorted[1].Key, sorted[2].Key)
	}
	// Input untouched.
	if rows[0].Key != "B" {
		t.Error("SortRows mutated its input")
	}
}

// TestPager verifies page slicing, clamping, and reset on SetRows.
func TestPager(t *testing.T) {
	var rows []aggregate.TableRow
	for i := 0; i < 23; i++ {
		rows = append(rows, aggregate.TableRow{PartNumber: string(rune('A' + i))})
	}

	p := NewPager(10)
	p.SetRows(rows)

	if p.PageCount() != 3 {
		t.Errorf("page count = %d, want 3", p.PageCount())
	}
	if got := p.PageData(); len(got) != 10 || got[0].PartNumber != "A" {
		t.Errorf("page 0 = %d rows starting %q", len(got), got[0].PartNumber)
	}

	p.SetPage(2)
	if got := p.PageData(); len(got) != 3 {
		t.Errorf("last page = %d rows, want 3", len(got))
	}

	p.SetPage(99)
	if p.Page() != 2 {
		t.Errorf("page clamped to %d, want 2", p.Page())
	}

	p.SetRows(rows[:5])
	if p.Page() != 0 || p.PageCount() != 1 {
		t.Errorf("after SetRows: page %d count %d, want 0/1", p.Page(), p.PageCount())
	}

	p.SetRows(nil)
	if p.PageCount() != 0 || p.PageData() != nil {
		t.Error("empty pager must return no pages")
	}
}

// TestWriteResultCSV spot-checks the CSV shape.
func TestWriteResultCSV(t *testing.T) {
	res := New(testEntries()).Result(0)

	var buf bytes.Buffer
	if err := WriteResultCSV(&buf, res); err != nil {
		t.Fatalf("WriteResultCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Key,2026,2027,Total" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "RMX,3,2,5" {
		t.Errorf("first row = %q, want RMX,3,2,5", lines[1])
	}
}

// TestWriteRowsCSV spot-checks the table CSV shape.
func TestWriteRowsCSV(t *testing.T) {
	rows := []aggregate.TableRow{
		{Key: "Acme", PartNumber: "ROOT-1", Description: "Fan case", YearCounts: map[int]int{2026: 6}, Total: 6},
	}

	var buf bytes.Buffer
	if err := WriteRowsCSV(&buf, rows); err != nil {
		t.Fatalf("WriteRowsCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Key,Part Number,Description,2026,Total" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Acme,ROOT-1,Fan case,6,6" {
		t.Errorf("row = %q", lines[1])
	}
}
