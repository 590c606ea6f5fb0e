// Package bom defines the bill-of-materials data model for demand
// aggregation: engine programs, configurations, shipment events (ESNs), and
// the five-level part tree.
//
// A Dataset is built once per load/refresh and is immutable for the duration
// of any aggregation pass. Normalization happens at ingestion time so that
// consumers never branch on field shape (e.g. hwOwner is always a list).
package bom

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"
)

// MaxDepth is the deepest part level in a BOM tree.
// Children below this level are ignored during normalization and traversal.
const MaxDepth = 5

// OwnerList holds hardware-ownership attributions for a part.
// The upstream feed encodes this field either as a single string or as a
// JSON array; it is normalized to a list at ingestion so every consumer
// sees one shape.
type OwnerList []string

// UnmarshalJSON accepts "A", ["A","B"], or null.
func (o *OwnerList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*o = nil
		} else {
			*o = OwnerList{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("hwOwner must be a string or a list of strings: %w", err)
	}
	out := make(OwnerList, 0, len(list))
	for _, v := range list {
		if v != "" {
			out = append(out, v)
		}
	}
	*o = out
	return nil
}

// Part is a node in the BOM tree, level 1 through 5.
// Supplier, RMSupplier, RawType, and HWOwners are all optional; a part with
// no own Supplier inherits the nearest ancestor's during traversal.
type Part struct {
	// PartNumber is the canonical part identifier.
	PartNumber string `json:"partNumber"`

	// Description is free-form display text.
	Description string `json:"description,omitempty"`

	// Supplier is the assembly supplier. Empty means "inherit from the
	// nearest ancestor that has one".
	Supplier string `json:"supplier,omitempty"`

	// RMSupplier is the raw-material supplier, attributed independently
	// of the assembly supplier.
	RMSupplier string `json:"rmSupplier,omitempty"`

	// RawType is the raw-material type (e.g. "Titanium").
	RawType string `json:"rawType,omitempty"`

	// HWOwners lists hardware owners. May be empty.
	HWOwners OwnerList `json:"hwOwner,omitempty"`

	// QPE is quantity per engine. Defaults to 1 during normalization.
	QPE int `json:"qpe,omitempty"`

	// Level is 1..5. Set during normalization (child = parent + 1).
	Level int `json:"level,omitempty"`

	// Children are the parts one level down. Nil is treated as a leaf.
	Children []*Part `json:"children,omitempty"`
}

// ESN is a shipment event (engine serial number) with a target ship date.
// An ESN belongs to exactly one configuration.
type ESN struct {
	// Serial identifies the shipped unit.
	Serial string `json:"esn"`

	// ShipDate is the raw target ship date string from the feed.
	ShipDate string `json:"shipDate"`

	// Year is parsed from ShipDate during normalization.
	// Zero means the date was unparseable; such ESNs are still visited
	// structurally but never credited to a year bucket.
	Year int `json:"-"`
}

// Configuration groups ESNs and root parts under an engine program.
type Configuration struct {
	Label string   `json:"label"`
	ESNs  []*ESN   `json:"esns,omitempty"`
	Parts []*Part  `json:"parts,omitempty"`
}

// EngineProgram is a product line with a canonical name, an optional display
// alias (e.g. "LM2500" displayed as "LM25"), and an ordered configuration
// list.
type EngineProgram struct {
	Name    string           `json:"name"`
	Alias   string           `json:"alias,omitempty"`
	Configs []*Configuration `json:"configs,omitempty"`
}

// Dataset is an immutable snapshot of the full program tree.
// Version participates in memoization keys; two datasets with different
// content must carry different versions.
type Dataset struct {
	Programs []*EngineProgram
	Version  string

	aliases map[string]string
}

// NewDataset normalizes the given programs and wraps them in a Dataset.
// If version is empty, a content fingerprint is used instead.
// The programs slice is owned by the dataset after this call.
func NewDataset(programs []*EngineProgram, version string) *Dataset {
	ds := &Dataset{Programs: programs}
	ds.normalize()
	if version == "" {
		version = ds.fingerprint()
	}
	ds.Version = version
	return ds
}

// Canonical maps a display alias back to the canonical program name.
// Unknown names are returned unchanged.
func (ds *Dataset) Canonical(name string) string {
	if canonical, ok := ds.aliases[name]; ok {
		return canonical
	}
	return name
}

// normalize sets levels, defaults QPE, parses ship years, and builds the
// alias map. Traversal is iterative; malformed child lists never panic.
func (ds *Dataset) normalize() {
	ds.aliases = make(map[string]string)
	for _, prog := range ds.Programs {
		if prog == nil {
			continue
		}
		if prog.Alias != "" && prog.Alias != prog.Name {
			ds.aliases[prog.Alias] = prog.Name
		}
		for _, cfg := range prog.Configs {
			if cfg == nil {
				continue
			}
			for _, esn := range cfg.ESNs {
				if esn == nil {
					continue
				}
				esn.Year = ParseShipYear(esn.ShipDate)
			}
			normalizeParts(cfg.Parts)
		}
	}
}

type normFrame struct {
	part  *Part
	level int
}

func normalizeParts(roots []*Part) {
	stack := make([]normFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] != nil {
			stack = append(stack, normFrame{roots[i], 1})
		}
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.part.Level = f.level
		if f.part.QPE <= 0 {
			f.part.QPE = 1
		}
		if f.level >= MaxDepth {
			continue
		}
		for i := len(f.part.Children) - 1; i >= 0; i-- {
			if f.part.Children[i] != nil {
				stack = append(stack, normFrame{f.part.Children[i], f.level + 1})
			}
		}
	}
}

// shipDateLayouts are tried in order. The feed's native format is
// day/month/year; ISO dates appear in some extracts.
var shipDateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	time.RFC3339,
}

// ParseShipYear extracts the year from a target ship date string.
// Returns 0 when the date cannot be parsed in any known layout.
func ParseShipYear(s string) int {
	if s == "" {
		return 0
	}
	for _, layout := range shipDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year()
		}
	}
	// Bare year ("2026") shows up in hand-entered rows.
	if y, err := strconv.Atoi(s); err == nil && y >= 1900 && y <= 2200 {
		return y
	}
	return 0
}

// fingerprint hashes the dataset structure for use as a default version.
func (ds *Dataset) fingerprint() string {
	h := fnv.New64a()
	for _, prog := range ds.Programs {
		if prog == nil {
			continue
		}
		h.Write([]byte(prog.Name))
		for _, cfg := range prog.Configs {
			if cfg == nil {
				continue
			}
			h.Write([]byte(cfg.Label))
			for _, esn := range cfg.ESNs {
				if esn != nil {
					h.Write([]byte(esn.Serial))
					h.Write([]byte(esn.ShipDate))
				}
			}
			fingerprintParts(h, cfg.Parts)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func fingerprintParts(h interface{ Write([]byte) (int, error) }, roots []*Part) {
	stack := make([]*Part, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] != nil {
			stack = append(stack, roots[i])
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h.Write([]byte(p.PartNumber))
		h.Write([]byte(p.Description))
		h.Write([]byte(p.Supplier))
		h.Write([]byte(p.RMSupplier))
		h.Write([]byte(p.RawType))
		for _, owner := range p.HWOwners {
			h.Write([]byte(owner))
		}
		h.Write(binary.AppendVarint(nil, int64(p.QPE)))
		h.Write(binary.AppendVarint(nil, int64(p.Level)))
		for i := len(p.Children) - 1; i >= 0; i-- {
			if p.Children[i] != nil {
				stack = append(stack, p.Children[i])
			}
		}
	}
}
