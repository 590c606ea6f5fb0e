// Package options maintains the filter option store: an in-memory DuckDB
// mirror of the flattened BOM used to list the distinct choices of each
// filter dimension under the rest of the active selection.
package options

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
)

const createParts = `
CREATE TABLE parts (
	program     VARCHAR NOT NULL,
	config      VARCHAR NOT NULL,
	module      VARCHAR NOT NULL,
	part_number VARCHAR NOT NULL,
	description VARCHAR,
	level       INTEGER NOT NULL,
	supplier    VARCHAR,
	rm_supplier VARCHAR,
	raw_type    VARCHAR,
	hw_owner    VARCHAR,
	qpe         INTEGER NOT NULL
)`

const createShipments = `
CREATE TABLE shipments (
	program   VARCHAR NOT NULL,
	config    VARCHAR NOT NULL,
	esn       VARCHAR NOT NULL,
	ship_year INTEGER
)`

// Store answers "which values can this dimension still take" questions
// against an in-memory DuckDB copy of the flattened BOM.
// Safe for concurrent use after NewStore returns.
type Store struct {
	db      *sql.DB
	parts   *filter.DuckDBEncoder
	ships   *filter.DuckDBEncoder
	logger  *slog.Logger
	version string
}

// NewStore builds the option store from a normalized dataset. Parts with
// multiple hardware owners get one row per owner, so owner filters and
// owner listings see individual names.
func NewStore(ctx context.Context, ds *bom.Dataset, logger *slog.Logger) (*Store, error) {
	if ds == nil {
		return nil, fmt.Errorf("options: nil dataset")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{
		db:      db,
		parts:   filter.NewDuckDBEncoder(filter.DefaultPartColumns),
		ships:   filter.NewDuckDBEncoder(filter.DefaultShipmentColumns),
		logger:  logger,
		version: ds.Version,
	}
	if err := s.populate(ctx, ds); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) populate(ctx context.Context, ds *bom.Dataset) error {
	for _, ddl := range []string{createParts, createShipments} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	insertPart, err := tx.PrepareContext(ctx,
		`INSERT INTO parts VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare parts insert: %w", err)
	}
	defer insertPart.Close()

	rows := 0
	for _, p := range bom.Flatten(ds) {
		owners := p.HWOwners
		if len(owners) == 0 {
			owners = []string{""}
		}
		for _, owner := range owners {
			_, err := insertPart.ExecContext(ctx,
				p.Program, p.Config, p.Module, p.PartNumber,
				nullable(p.Description), p.Level,
				nullable(p.Supplier), nullable(p.RMSupplier),
				nullable(p.RawType), nullable(owner), p.QPE,
			)
			if err != nil {
				return fmt.Errorf("insert part %s: %w", p.PartNumber, err)
			}
			rows++
		}
	}

	insertShip, err := tx.PrepareContext(ctx,
		`INSERT INTO shipments VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare shipments insert: %w", err)
	}
	defer insertShip.Close()

	ships := 0
	for _, prog := range ds.Programs {
		if prog == nil {
			continue
		}
		for _, cfg := range prog.Configs {
			if cfg == nil {
				continue
			}
			for _, esn := range cfg.ESNs {
				if esn == nil {
					continue
				}
				var year interface{}
				if esn.Year != 0 {
					year = esn.Year
				}
				if _, err := insertShip.ExecContext(ctx, prog.Name, cfg.Label, esn.Serial, year); err != nil {
					return fmt.Errorf("insert shipment %s: %w", esn.Serial, err)
				}
				ships++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}

	s.logger.Debug("option store loaded",
		"dataset_version", ds.Version,
		"part_rows", rows,
		"shipment_rows", ships,
	)
	return nil
}

// Version reports the dataset version the store was built from.
func (s *Store) Version() string { return s.version }

// DistinctValues lists the distinct values a dimension can take under the
// given selection. The dimension's own filter is excluded, so an already
// narrowed dimension still shows its alternatives.
func (s *Store) DistinctValues(ctx context.Context, dimension string, snap filter.Snapshot) ([]string, error) {
	table, column, enc, err := s.resolve(dimension)
	if err != nil {
		return nil, err
	}

	query := "SELECT DISTINCT " + column + " FROM " + table +
		" WHERE " + column + " IS NOT NULL"
	if where := enc.EncodeWhere(snap, dimension); where != "" {
		query += " AND (" + where + ")"
	}
	query += " ORDER BY " + column

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s options: %w", dimension, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		if dimension == filter.DimYears {
			var year int
			if err := rows.Scan(&year); err != nil {
				return nil, fmt.Errorf("scan year: %w", err)
			}
			out = append(out, strconv.Itoa(year))
			continue
		}
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", dimension, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// resolve maps a dimension to its backing table, column, and encoder.
func (s *Store) resolve(dimension string) (table, column string, enc *filter.DuckDBEncoder, err error) {
	if dimension == filter.DimYears {
		return "shipments", filter.DefaultShipmentColumns[dimension], s.ships, nil
	}
	column, ok := filter.DefaultPartColumns[dimension]
	if !ok {
		return "", "", nil, fmt.Errorf("options: unknown dimension %q", dimension)
	}
	return "parts", column, s.parts, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
