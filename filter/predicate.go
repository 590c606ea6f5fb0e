package filter

// Canonicalizer maps a program display alias to its canonical name.
// The bom.Dataset Canonical method satisfies this.
type Canonicalizer func(name string) string

// Predicate evaluates a Snapshot against candidate tuples during an
// aggregation pass. The traversal stages (program, config, year) are checked
// in order, each short-circuiting; the leaf-dimension checks are applied
// only when a value is about to be credited to an aggregation entry.
type Predicate struct {
	snap      Snapshot
	canonical Canonicalizer
}

// NewPredicate builds a predicate for one pass. The productLines set is
// canonicalized up front, so selections may name a program by alias or by
// canonical name interchangeably.
// canonical may be nil when no alias map applies.
func NewPredicate(snap Snapshot, canonical Canonicalizer) *Predicate {
	if canonical == nil {
		canonical = func(name string) string { return name }
	}
	if !snap.ProductLines.Empty() {
		canon := make(Set, len(snap.ProductLines))
		for v := range snap.ProductLines {
			canon[canonical(v)] = struct{}{}
		}
		snap.ProductLines = canon
	}
	return &Predicate{snap: snap, canonical: canonical}
}

// AcceptsProgram checks the productLines dimension against the canonicalized
// program name.
func (p *Predicate) AcceptsProgram(name string) bool {
	if p.snap.ProductLines.Empty() {
		return true
	}
	return p.snap.ProductLines.Accepts(p.canonical(name))
}

// AcceptsConfig checks the configs dimension.
func (p *Predicate) AcceptsConfig(label string) bool {
	return p.snap.Configs.Accepts(label)
}

// AcceptsYear checks the years dimension. Year 0 (unparseable ship date)
// never passes: such ESNs are visited structurally but never credited.
func (p *Predicate) AcceptsYear(year int) bool {
	return p.snap.AcceptsYear(year)
}

// Credit-time leaf checks. Each applies the rule: an active filter on a
// dimension excludes a part whose value for that dimension is missing or
// outside the set from contributing, never from traversal.

// AllowsSupplier checks the suppliers dimension against the effective
// (inherited) supplier.
func (p *Predicate) AllowsSupplier(supplier string) bool {
	if p.snap.Suppliers.Empty() {
		return true
	}
	if supplier == "" {
		return false
	}
	return p.snap.Suppliers.Accepts(supplier)
}

// AllowsRMSupplier checks the rmSuppliers dimension.
func (p *Predicate) AllowsRMSupplier(rm string) bool {
	if p.snap.RMSuppliers.Empty() {
		return true
	}
	if rm == "" {
		return false
	}
	return p.snap.RMSuppliers.Accepts(rm)
}

// AllowsAnyOwner checks the hwOwners dimension against a part's owner list.
// A part with no owners fails only when the filter is active.
func (p *Predicate) AllowsAnyOwner(owners []string) bool {
	if p.snap.HWOwners.Empty() {
		return true
	}
	for _, o := range owners {
		if p.snap.HWOwners.Accepts(o) {
			return true
		}
	}
	return false
}

// AllowsOwner checks a single owner value, used by the hwOwner table mode
// where each listed owner is credited independently.
func (p *Predicate) AllowsOwner(owner string) bool {
	if p.snap.HWOwners.Empty() {
		return true
	}
	if owner == "" {
		return false
	}
	return p.snap.HWOwners.Accepts(owner)
}

// AllowsPart checks the partNumbers dimension.
func (p *Predicate) AllowsPart(pn string) bool {
	if p.snap.PartNumbers.Empty() {
		return true
	}
	if pn == "" {
		return false
	}
	return p.snap.PartNumbers.Accepts(pn)
}

// AllowsModule checks the modules dimension against the level-1 root part
// number a node descends from.
func (p *Predicate) AllowsModule(module string) bool {
	if p.snap.Modules.Empty() {
		return true
	}
	if module == "" {
		return false
	}
	return p.snap.Modules.Accepts(module)
}
