// Package aggregate computes dimension-keyed, year-bucketed demand counts
// from a BOM dataset under an active filter snapshot.
//
// Aggregation is a pure function of (dataset, snapshot, request): entries
// are rebuilt from scratch on every call, no state survives between calls,
// and neither the dataset nor the snapshot is mutated. Re-entrant calls from
// an event-driven caller therefore need no locking.
package aggregate

// Entry is one aggregation bucket: a dimension key with per-year counts, a
// running total, a per-level hit histogram, and the set of contributing
// sources (parent suppliers for RM-side modes, raw-material suppliers for
// the raw-type mode). Sources only ever gain members while crediting, so a
// zero-count source can never appear.
type Entry struct {
	// Key is the dimension value this entry aggregates.
	Key string

	// YearCounts buckets demand by ship year.
	YearCounts map[int]int

	// Total is the sum over all year buckets.
	Total int

	// LevelHits histograms credits by the BOM level (1..5) of the part
	// that carried the value.
	LevelHits map[int]int

	// Sources collects contributing attribution values.
	Sources map[string]struct{}
}

func newEntry(key string) *Entry {
	return &Entry{
		Key:        key,
		YearCounts: make(map[int]int),
		LevelHits:  make(map[int]int),
		Sources:    make(map[string]struct{}),
	}
}

// credit adds n units in the given year at the given level. An empty source
// is not recorded.
func (e *Entry) credit(year, n, level int, source string) {
	e.YearCounts[year] += n
	e.Total += n
	e.LevelHits[level] += n
	if source != "" {
		e.Sources[source] = struct{}{}
	}
}

// TableRow is one level-1 row for the supplier/hwOwner table view.
type TableRow struct {
	// Key is the grouping value (supplier or hardware owner).
	Key string

	// PartNumber and Description identify the level-1 part.
	PartNumber  string
	Description string

	// YearCounts is demand (ESN count x qpe) per ship year.
	YearCounts map[int]int

	// Total sums YearCounts.
	Total int
}
