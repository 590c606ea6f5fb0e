// Package filter implements multi-dimension filtering for demand
// aggregation.
//
// A Snapshot holds one value set per dimension. The convention, mandatory
// everywhere, is that an empty set accepts all values for that dimension.
// Snapshots are plain values: the aggregation engine receives an explicit
// snapshot per call and never reads shared mutable filter state.
//
// Predicate evaluates the traversal-level stages (program, configuration,
// year) with short-circuiting, and exposes credit-time checks for the leaf
// dimensions (supplier, rmSupplier, hwOwner, partNumber, module). Leaf
// checks never prune traversal; a part failing one is only excluded from
// contributing under that dimension.
//
// DuckDBEncoder renders a Snapshot as a SQL WHERE clause body for the
// DuckDB-backed option store.
package filter
