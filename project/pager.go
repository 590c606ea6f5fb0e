package project

import (
	"github.com/hangar-lab/demandview-go/aggregate"
)

// DefaultPageSize is used when no explicit page size is set.
const DefaultPageSize = 10

// Pager slices a sorted row list into pages for the table view.
// Not safe for concurrent use; the UI drives it from a single event loop.
type Pager struct {
	rows     []aggregate.TableRow
	pageSize int
	page     int
}

// NewPager creates a pager with the given page size (<= 0 selects
// DefaultPageSize).
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

// SetRows replaces the row list and resets to the first page.
func (p *Pager) SetRows(rows []aggregate.TableRow) {
	p.rows = rows
	p.page = 0
}

// Len is the total row count.
func (p *Pager) Len() int { return len(p.rows) }

// PageSize returns the rows-per-page setting.
func (p *Pager) PageSize() int { return p.pageSize }

// SetPageSize changes the page size and clamps the current page.
func (p *Pager) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	p.pageSize = n
	p.SetPage(p.page)
}

// Page returns the current zero-based page index.
func (p *Pager) Page() int { return p.page }

// SetPage moves to the given page, clamped to the valid range.
func (p *Pager) SetPage(n int) {
	if n < 0 {
		n = 0
	}
	if max := p.PageCount() - 1; n > max {
		if max < 0 {
			max = 0
		}
		n = max
	}
	p.page = n
}

// PageCount is the number of pages (zero for an empty row list).
func (p *Pager) PageCount() int {
	if len(p.rows) == 0 {
		return 0
	}
	return (len(p.rows) + p.pageSize - 1) / p.pageSize
}

// PageData returns the rows of the current page.
func (p *Pager) PageData() []aggregate.TableRow {
	start := p.page * p.pageSize
	if start >= len(p.rows) {
		return nil
	}
	end := start + p.pageSize
	if end > len(p.rows) {
		end = len(p.rows)
	}
	return p.rows[start:end]
}
