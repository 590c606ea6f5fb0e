// Package project turns raw aggregation entries into render-ready
// structures: deterministically sorted top-N chart series, flat table rows,
// pagination, and CSV export.
package project

import (
	"sort"
	"strconv"

	"github.com/hangar-lab/demandview-go/aggregate"
)

// KeyMeta carries per-key metadata for drill-down views.
type KeyMeta struct {
	// Levels maps "L1".."L5" to hit counts.
	Levels map[string]int

	// Sources lists contributing attribution values, sorted.
	Sources []string
}

// Result is the chart/table-ready projection of one aggregation pass.
// Labels and the Series rows are parallel arrays: Series[year][i] is the
// count for Labels[i] in that year.
type Result struct {
	// Labels are the selected keys in display order.
	Labels []string

	// Years lists the ship years present, ascending.
	Years []string

	// Series maps a year to counts aligned with Labels.
	Series map[string][]int

	// TotalsByKey maps each selected key to its total.
	TotalsByKey map[string]int

	// Meta maps each selected key to its levels/sources metadata.
	Meta map[string]KeyMeta
}

// Projection holds the full sorted entry collection from one pass. Slicing
// to different top-N values ("top 5", "show all", zoom) reuses the same
// pass without re-aggregating.
type Projection struct {
	entries []*aggregate.Entry
}

// New sorts the entries by descending total, ties broken by ascending key
// for determinism, and retains the full ordering.
func New(entries map[string]*aggregate.Entry) *Projection {
	sorted := make([]*aggregate.Entry, 0, len(entries))
	for _, e := range entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Key < sorted[j].Key
	})
	return &Projection{entries: sorted}
}

// Len is the number of keys in the full collection.
func (p *Projection) Len() int { return len(p.entries) }

// Keys returns all keys in display order.
func (p *Projection) Keys() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Key
	}
	return out
}

// Result projects the top n entries (n <= 0 means all) into parallel
// label/series arrays. Repeated calls with the same n yield identical
// results.
func (p *Projection) Result(n int) *Result {
	selected := p.entries
	if n > 0 && n < len(selected) {
		selected = selected[:n]
	}

	res := &Result{
		Labels:      make([]string, 0, len(selected)),
		Series:      make(map[string][]int),
		TotalsByKey: make(map[string]int, len(selected)),
		Meta:        make(map[string]KeyMeta, len(selected)),
	}

	yearSet := make(map[int]struct{})
	for _, e := range selected {
		for year := range e.YearCounts {
			yearSet[year] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	res.Years = make([]string, len(years))
	for i, year := range years {
		res.Years[i] = strconv.Itoa(year)
		res.Series[res.Years[i]] = make([]int, len(selected))
	}

	for i, e := range selected {
		res.Labels = append(res.Labels, e.Key)
		res.TotalsByKey[e.Key] = e.Total
		for j, year := range years {
			res.Series[res.Years[j]][i] = e.YearCounts[year]
		}
		res.Meta[e.Key] = KeyMeta{
			Levels:  levelLabels(e.LevelHits),
			Sources: sortedSources(e.Sources),
		}
	}
	return res
}

func levelLabels(hits map[int]int) map[string]int {
	out := make(map[string]int, len(hits))
	for level, n := range hits {
		out["L"+strconv.Itoa(level)] = n
	}
	return out
}

func sortedSources(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SortRows orders table rows by descending total, ties broken by key then
// part number, matching the entry ordering rule.
func SortRows(rows []aggregate.TableRow) []aggregate.TableRow {
	out := make([]aggregate.TableRow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].PartNumber < out[j].PartNumber
	})
	return out
}

// RowYears returns the ascending list of years present in the rows.
func RowYears(rows []aggregate.TableRow) []int {
	set := make(map[int]struct{})
	for _, r := range rows {
		for year := range r.YearCounts {
			set[year] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for year := range set {
		out = append(out, year)
	}
	sort.Ints(out)
	return out
}
