// Package walk implements iterative depth-first traversal of BOM part
// trees.
//
// The walker uses an explicit LIFO stack instead of call-stack recursion: a
// recursive walk over five levels of sibling fan-out risks stack overflow on
// large trees, while the iterative form is O(total nodes) time and bounded
// by the widest fan-out in memory. Children are pushed in reverse order so
// that popping reproduces the original left-to-right depth-first order;
// downstream level attribution depends on this ordering.
package walk

import (
	"github.com/hangar-lab/demandview-go/bom"
)

// VisitEvent is one node visit in traversal order.
type VisitEvent struct {
	// Part is the visited node.
	Part *bom.Part

	// Level is the node's depth, 1..5.
	Level int

	// InheritedSupplier is the effective supplier: the part's own value
	// when present, otherwise the nearest ancestor's. Threaded through
	// traversal frames by simple propagation, never recomputed by
	// ancestor lookup.
	InheritedSupplier string

	// Root is the level-1 part this node descends from (the node itself
	// at level 1). Used for module attribution.
	Root *bom.Part

	// ESNs are the shipment events in scope for this traversal.
	ESNs []*bom.ESN
}

// frame is one pending traversal step.
type frame struct {
	part     *bom.Part
	level    int
	supplier string
	root     *bom.Part
}

// Walk traverses the given root parts depth-first and returns the ordered
// visit sequence. supplierHint seeds inheritance above level 1 (usually
// empty). Malformed input (nil roots, nil children) is skipped silently;
// the walker never panics. Children below level 5 are ignored.
func Walk(roots []*bom.Part, supplierHint string, esns []*bom.ESN) []VisitEvent {
	if len(roots) == 0 {
		return nil
	}

	events := make([]VisitEvent, 0, len(roots))
	stack := make([]frame, 0, len(roots))

	// Roots pushed in reverse so the first root pops first.
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] == nil {
			continue
		}
		stack = append(stack, frame{
			part:     roots[i],
			level:    1,
			supplier: supplierHint,
			root:     roots[i],
		})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		supplier := f.part.Supplier
		if supplier == "" {
			supplier = f.supplier
		}

		events = append(events, VisitEvent{
			Part:              f.part,
			Level:             f.level,
			InheritedSupplier: supplier,
			Root:              f.root,
			ESNs:              esns,
		})

		if f.level >= bom.MaxDepth {
			continue
		}
		for i := len(f.part.Children) - 1; i >= 0; i-- {
			child := f.part.Children[i]
			if child == nil {
				continue
			}
			stack = append(stack, frame{
				part:     child,
				level:    f.level + 1,
				supplier: supplier,
				root:     f.root,
			})
		}
	}

	return events
}
