package demandview

import (
	"fmt"

	"github.com/hangar-lab/demandview-go/bom"
)

// DatasetBuilder builds normalized BOM datasets using a fluent API.
// Not thread-safe - use only during initialization.
type DatasetBuilder struct {
	version  string
	programs []*programBuilder
	built    bool
}

// NewDatasetBuilder creates a new fluent dataset builder.
// Returns builder in "empty" state (no programs).
//
// Example:
//
//	ds, err := demandview.NewDatasetBuilder().
//	    Version("2026-08").
//	    Program("LM2500").Alias("LM25").
//	        Config("Base").
//	            ESN("E1", "15/03/2026").
//	            Root(fanCase).
//	    Build()
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{
		programs: make([]*programBuilder, 0),
	}
}

// Version sets the dataset version used in memoization keys.
// OPTIONAL: If never called, a content fingerprint is used.
func (db *DatasetBuilder) Version(v string) *DatasetBuilder {
	db.version = v
	return db
}

// Program starts defining a new engine program.
// Program name MUST be non-empty and unique within the dataset.
func (db *DatasetBuilder) Program(name string) *ProgramBuilder {
	pb := &programBuilder{
		name:    name,
		dataset: db,
	}
	db.programs = append(db.programs, pb)
	return &ProgramBuilder{builder: pb}
}

// Build finalizes and normalizes the dataset: levels are assigned, qpe
// defaults to 1, ship years are parsed, and the alias map is built.
// Can only be called once.
// Returns error if the dataset is invalid (e.g., duplicate program names).
func (db *DatasetBuilder) Build() (*bom.Dataset, error) {
	if db.built {
		return nil, fmt.Errorf("dataset already built")
	}

	seenPrograms := make(map[string]bool)
	for _, pb := range db.programs {
		if pb.name == "" {
			return nil, fmt.Errorf("program name cannot be empty")
		}
		if seenPrograms[pb.name] {
			return nil, fmt.Errorf("duplicate program name: %s", pb.name)
		}
		seenPrograms[pb.name] = true

		seenConfigs := make(map[string]bool)
		for _, cb := range pb.configs {
			if cb.label == "" {
				return nil, fmt.Errorf("config label cannot be empty in program %s", pb.name)
			}
			if seenConfigs[cb.label] {
				return nil, fmt.Errorf("duplicate config label %s in program %s", cb.label, pb.name)
			}
			seenConfigs[cb.label] = true

			seenRoots := make(map[string]bool)
			for _, p := range cb.parts {
				if p == nil || p.PartNumber == "" {
					return nil, fmt.Errorf("root part without part number in %s/%s", pb.name, cb.label)
				}
				if seenRoots[p.PartNumber] {
					return nil, fmt.Errorf("duplicate root part %s in %s/%s", p.PartNumber, pb.name, cb.label)
				}
				seenRoots[p.PartNumber] = true
			}
		}
	}

	db.built = true

	programs := make([]*bom.EngineProgram, 0, len(db.programs))
	for _, pb := range db.programs {
		configs := make([]*bom.Configuration, 0, len(pb.configs))
		for _, cb := range pb.configs {
			configs = append(configs, &bom.Configuration{
				Label: cb.label,
				ESNs:  cb.esns,
				Parts: cb.parts,
			})
		}
		programs = append(programs, &bom.EngineProgram{
			Name:    pb.name,
			Alias:   pb.alias,
			Configs: configs,
		})
	}

	return bom.NewDataset(programs, db.version), nil
}

// ProgramBuilder builds one engine program within a dataset.
// Not thread-safe - use only during initialization.
type ProgramBuilder struct {
	builder *programBuilder
}

type programBuilder struct {
	name    string
	alias   string
	configs []*configBuilder
	dataset *DatasetBuilder
}

// Alias sets the program's display alias (e.g. "LM2500" shown as "LM25").
// Filter selections may use either form.
func (pb *ProgramBuilder) Alias(alias string) *ProgramBuilder {
	pb.builder.alias = alias
	return pb
}

// Config starts defining a configuration within this program.
// Config label MUST be non-empty and unique within the program.
func (pb *ProgramBuilder) Config(label string) *ConfigBuilder {
	cb := &configBuilder{
		label:   label,
		program: pb.builder,
	}
	pb.builder.configs = append(pb.builder.configs, cb)
	return &ConfigBuilder{builder: cb}
}

// Program starts a new program definition (returns to DatasetBuilder).
func (pb *ProgramBuilder) Program(name string) *ProgramBuilder {
	return pb.builder.dataset.Program(name)
}

// Build finalizes the dataset (returns to DatasetBuilder).
func (pb *ProgramBuilder) Build() (*bom.Dataset, error) {
	return pb.builder.dataset.Build()
}

// ConfigBuilder builds one configuration within a program.
// Not thread-safe - use only during initialization.
type ConfigBuilder struct {
	builder *configBuilder
}

type configBuilder struct {
	label   string
	esns    []*bom.ESN
	parts   []*bom.Part
	program *programBuilder
}

// ESN adds a shipped unit with its raw ship date string.
// An unparseable date is kept; such units are visited structurally but
// never credited to a year bucket.
func (cb *ConfigBuilder) ESN(serial, shipDate string) *ConfigBuilder {
	cb.builder.esns = append(cb.builder.esns, &bom.ESN{
		Serial:   serial,
		ShipDate: shipDate,
	})
	return cb
}

// Root adds a level-1 part tree to this configuration. The part and its
// children are owned by the dataset after Build.
func (cb *ConfigBuilder) Root(part *bom.Part) *ConfigBuilder {
	cb.builder.parts = append(cb.builder.parts, part)
	return cb
}

// Config starts a new configuration in the same program.
func (cb *ConfigBuilder) Config(label string) *ConfigBuilder {
	pb := &ProgramBuilder{builder: cb.builder.program}
	return pb.Config(label)
}

// Program starts a new program definition (returns to DatasetBuilder).
func (cb *ConfigBuilder) Program(name string) *ProgramBuilder {
	return cb.builder.program.dataset.Program(name)
}

// Build finalizes the dataset (returns to DatasetBuilder).
func (cb *ConfigBuilder) Build() (*bom.Dataset, error) {
	return cb.builder.program.dataset.Build()
}
