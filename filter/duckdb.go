package filter

import (
	"strings"
)

// DefaultPartColumns maps filter dimensions to columns of the flattened
// parts table in the option store. Years are absent: parts carry no ship
// date.
var DefaultPartColumns = map[string]string{
	DimProductLines: "program",
	DimConfigs:      "config",
	DimSuppliers:    "supplier",
	DimRMSuppliers:  "rm_supplier",
	DimHWOwners:     "hw_owner",
	DimPartNumbers:  "part_number",
	DimModules:      "module",
}

// DefaultShipmentColumns maps filter dimensions to columns of the shipments
// table.
var DefaultShipmentColumns = map[string]string{
	DimProductLines: "program",
	DimConfigs:      "config",
	DimYears:        "ship_year",
}

// DuckDBEncoder renders a Snapshot as a DuckDB WHERE clause body.
// Dimensions without a column mapping are skipped; an empty dimension set
// (wildcard) produces no condition.
type DuckDBEncoder struct {
	columns map[string]string
}

// NewDuckDBEncoder creates an encoder with the given dimension-to-column
// mapping. If columns is nil, DefaultPartColumns is used.
func NewDuckDBEncoder(columns map[string]string) *DuckDBEncoder {
	if columns == nil {
		columns = DefaultPartColumns
	}
	return &DuckDBEncoder{columns: columns}
}

// EncodeWhere converts the snapshot to a WHERE clause body (without the
// "WHERE" keyword), AND-joining one IN-list per active dimension. The
// dimension named by exclude is skipped: the option store omits a
// dimension's own filter when listing its choices. Returns empty string
// when no condition applies.
func (e *DuckDBEncoder) EncodeWhere(snap Snapshot, exclude string) string {
	var parts []string
	for _, dim := range Dimensions {
		if dim == exclude {
			continue
		}
		col, ok := e.columns[dim]
		if !ok {
			continue
		}
		set := snap.Dimension(dim)
		if set.Empty() {
			continue
		}
		parts = append(parts, col+" IN ("+encodeValueList(set.Sorted())+")")
	}
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ") AND (") + ")"
}

// encodeValueList renders sorted values as quoted SQL literals.
func encodeValueList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteString(v)
	}
	return strings.Join(quoted, ", ")
}

// quoteString escapes a string for SQL (single quotes doubled).
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
