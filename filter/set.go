package filter

import (
	"hash/fnv"
	"sort"
	"strconv"
)

// Set is a set of accepted values for one dimension.
// An empty (or nil) set accepts everything.
type Set map[string]struct{}

// NewSet builds a Set from the given values. Empty strings are ignored.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Accepts reports whether v passes the set: true when the set is empty
// (wildcard) or contains v.
func (s Set) Accepts(v string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[v]
	return ok
}

// Empty reports whether the set is a wildcard.
func (s Set) Empty() bool { return len(s) == 0 }

// Sorted returns the values in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Dimension names used by the filter-state manager and the option store.
const (
	DimProductLines = "productLines"
	DimYears        = "years"
	DimConfigs      = "configs"
	DimSuppliers    = "suppliers"
	DimRMSuppliers  = "rmSuppliers"
	DimHWOwners     = "hwOwners"
	DimPartNumbers  = "partNumbers"
	DimModules      = "modules"
)

// Dimensions lists all filterable dimensions in stable order.
var Dimensions = []string{
	DimProductLines,
	DimYears,
	DimConfigs,
	DimSuppliers,
	DimRMSuppliers,
	DimHWOwners,
	DimPartNumbers,
	DimModules,
}

// Snapshot is an immutable-by-convention value holding every dimension's
// accepted set. The engine treats snapshots as read-only for the duration of
// a pass; the filter-state manager hands out clones.
type Snapshot struct {
	ProductLines Set
	Years        Set
	Configs      Set
	Suppliers    Set
	RMSuppliers  Set
	HWOwners     Set
	PartNumbers  Set
	Modules      Set
}

// Dimension returns the set for a named dimension, nil for unknown names.
func (s Snapshot) Dimension(name string) Set {
	switch name {
	case DimProductLines:
		return s.ProductLines
	case DimYears:
		return s.Years
	case DimConfigs:
		return s.Configs
	case DimSuppliers:
		return s.Suppliers
	case DimRMSuppliers:
		return s.RMSuppliers
	case DimHWOwners:
		return s.HWOwners
	case DimPartNumbers:
		return s.PartNumbers
	case DimModules:
		return s.Modules
	}
	return nil
}

// WithDimension returns a copy of the snapshot with one dimension replaced.
func (s Snapshot) WithDimension(name string, values Set) Snapshot {
	out := s.Clone()
	switch name {
	case DimProductLines:
		out.ProductLines = values
	case DimYears:
		out.Years = values
	case DimConfigs:
		out.Configs = values
	case DimSuppliers:
		out.Suppliers = values
	case DimRMSuppliers:
		out.RMSuppliers = values
	case DimHWOwners:
		out.HWOwners = values
	case DimPartNumbers:
		out.PartNumbers = values
	case DimModules:
		out.Modules = values
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		ProductLines: s.ProductLines.Clone(),
		Years:        s.Years.Clone(),
		Configs:      s.Configs.Clone(),
		Suppliers:    s.Suppliers.Clone(),
		RMSuppliers:  s.RMSuppliers.Clone(),
		HWOwners:     s.HWOwners.Clone(),
		PartNumbers:  s.PartNumbers.Clone(),
		Modules:      s.Modules.Clone(),
	}
}

// Empty reports whether every dimension is a wildcard.
func (s Snapshot) Empty() bool {
	for _, name := range Dimensions {
		if !s.Dimension(name).Empty() {
			return false
		}
	}
	return true
}

// Hash produces a stable 64-bit digest of the snapshot, used as a
// memoization key component. Dimension order and value order are fixed, so
// equal snapshots always hash equal.
func (s Snapshot) Hash() uint64 {
	h := fnv.New64a()
	for _, name := range Dimensions {
		h.Write([]byte(name))
		h.Write([]byte{0})
		for _, v := range s.Dimension(name).Sorted() {
			h.Write([]byte(v))
			h.Write([]byte{0x1f})
		}
	}
	return h.Sum64()
}

// AcceptsYear is a convenience wrapper comparing an integer year against the
// years set (stored as strings, as the UI sends them).
func (s Snapshot) AcceptsYear(year int) bool {
	if year == 0 {
		return false
	}
	return s.Years.Accepts(strconv.Itoa(year))
}
