package bom

// FlatPart is a denormalized row for one BOM node: the shape loaded into the
// DuckDB option store and exported over Arrow. Supplier is the effective
// (inherited) supplier; Module is the part number of the level-1 root the
// node descends from.
type FlatPart struct {
	Program     string
	Config      string
	Module      string
	PartNumber  string
	Description string
	Level       int
	Supplier    string
	RMSupplier  string
	RawType     string
	HWOwners    []string
	QPE         int
}

type flattenFrame struct {
	part     *Part
	level    int
	supplier string
	module   string
}

// Flatten produces one FlatPart per BOM node across all programs and
// configurations, in left-to-right depth-first order.
func Flatten(ds *Dataset) []FlatPart {
	var out []FlatPart
	for _, prog := range ds.Programs {
		if prog == nil {
			continue
		}
		for _, cfg := range prog.Configs {
			if cfg == nil {
				continue
			}
			stack := make([]flattenFrame, 0, len(cfg.Parts))
			for i := len(cfg.Parts) - 1; i >= 0; i-- {
				root := cfg.Parts[i]
				if root == nil {
					continue
				}
				stack = append(stack, flattenFrame{root, 1, root.Supplier, root.PartNumber})
			}
			for len(stack) > 0 {
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				supplier := f.part.Supplier
				if supplier == "" {
					supplier = f.supplier
				}
				out = append(out, FlatPart{
					Program:     prog.Name,
					Config:      cfg.Label,
					Module:      f.module,
					PartNumber:  f.part.PartNumber,
					Description: f.part.Description,
					Level:       f.level,
					Supplier:    supplier,
					RMSupplier:  f.part.RMSupplier,
					RawType:     f.part.RawType,
					HWOwners:    f.part.HWOwners,
					QPE:         f.part.QPE,
				})
				if f.level >= MaxDepth {
					continue
				}
				for i := len(f.part.Children) - 1; i >= 0; i-- {
					child := f.part.Children[i]
					if child == nil {
						continue
					}
					stack = append(stack, flattenFrame{child, f.level + 1, supplier, f.module})
				}
			}
		}
	}
	return out
}
