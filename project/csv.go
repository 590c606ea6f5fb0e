package project

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hangar-lab/demandview-go/aggregate"
)

// WriteResultCSV writes a projected result as CSV: one row per label with
// per-year counts and the total.
func WriteResultCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Key"}, res.Years...)
	header = append(header, "Total")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, label := range res.Labels {
		row := make([]string, 0, len(header))
		row = append(row, label)
		for _, year := range res.Years {
			row = append(row, strconv.Itoa(res.Series[year][i]))
		}
		row = append(row, strconv.Itoa(res.TotalsByKey[label]))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRowsCSV writes table rows as CSV with key, part number, description,
// per-year demand, and total.
func WriteRowsCSV(w io.Writer, rows []aggregate.TableRow) error {
	cw := csv.NewWriter(w)

	years := RowYears(rows)
	header := []string{"Key", "Part Number", "Description"}
	for _, year := range years {
		header = append(header, strconv.Itoa(year))
	}
	header = append(header, "Total")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rows {
		row := []string{r.Key, r.PartNumber, r.Description}
		for _, year := range years {
			row = append(row, strconv.Itoa(r.YearCounts[year]))
		}
		row = append(row, strconv.Itoa(r.Total))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
