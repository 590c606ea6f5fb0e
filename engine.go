package demandview

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/hangar-lab/demandview-go/aggregate"
	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
	"github.com/hangar-lab/demandview-go/internal/codec"
	"github.com/hangar-lab/demandview-go/internal/metrics"
	"github.com/hangar-lab/demandview-go/internal/recovery"
	"github.com/hangar-lab/demandview-go/project"
)

// Dimension is re-exported from the aggregate package for convenience.
type Dimension = aggregate.Dimension

// Aggregation dimensions, re-exported for convenience.
const (
	DimensionRawType       = aggregate.DimensionRawType
	DimensionRMSupplier    = aggregate.DimensionRMSupplier
	DimensionSupplierTable = aggregate.DimensionSupplierTable
	DimensionHWOwnerTable  = aggregate.DimensionHWOwnerTable
)

// Request names one aggregation a caller wants projected.
type Request struct {
	// Dimension selects the aggregation mode. REQUIRED.
	Dimension Dimension

	// RawType scopes DimensionRMSupplier to one raw-material type.
	// Ignored by the other modes.
	RawType string

	// TopN limits the projected result to the N largest keys.
	// Zero or negative means all keys.
	TopN int
}

// Engine is the high-level façade over aggregation and projection: one
// call turns (dataset, snapshot, request) into a render-ready result, with
// optional memoization of repeated passes.
// Safe for concurrent use.
type Engine struct {
	logger *slog.Logger
	codec  *codec.Codec

	memoCap int

	mu   sync.Mutex
	memo map[string][]byte
}

// New creates an engine from the given config.
func New(config EngineConfig) (*Engine, error) {
	if config.MemoCapacity < 0 {
		return nil, fmt.Errorf("%w: negative memo capacity", ErrInvalidConfig)
	}

	e := &Engine{
		logger:  configLogger(config.Logger, config.LogLevel),
		memoCap: config.MemoCapacity,
	}
	if e.memoCap == 0 {
		e.memoCap = DefaultMemoCapacity
	}

	if config.EnableMemo {
		c, err := codec.New()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		e.codec = c
		e.memo = make(map[string][]byte)
	}

	return e, nil
}

// Close releases codec resources. Safe to call on an engine without
// memoization.
func (e *Engine) Close() error {
	if e.codec != nil {
		return e.codec.Close()
	}
	return nil
}

// Aggregate runs one pass and projects it to the request's TopN. Repeated
// calls with identical inputs return equal results; with memoization on,
// repeats skip the tree walk entirely.
func (e *Engine) Aggregate(ctx context.Context, ds *bom.Dataset, snap filter.Snapshot, req Request) (*project.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNilDataset
	}
	if !knownRequestDimension(req.Dimension) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, req.Dimension)
	}

	key := memoKey(ds, snap, req)
	if cached, ok := e.memoLookup(key); ok {
		return cached, nil
	}

	start := time.Now()
	res, err := recovery.GuardValue(e.logger, "aggregate", func() (*project.Result, error) {
		agg, err := aggregate.Run(ds, snap, aggregate.Request{
			Dimension: req.Dimension,
			RawType:   req.RawType,
		})
		if err != nil {
			return nil, err
		}
		return project.New(agg.Entries).Result(req.TopN), nil
	})

	dim := string(req.Dimension)
	if err != nil {
		metrics.AggregationPasses.WithLabelValues(dim, "error").Inc()
		return nil, err
	}
	metrics.AggregationPasses.WithLabelValues(dim, "ok").Inc()
	metrics.AggregationDuration.WithLabelValues(dim).Observe(time.Since(start).Seconds())

	e.logger.Debug("aggregation pass complete",
		"dimension", dim,
		"keys", len(res.Labels),
		"duration", time.Since(start),
	)

	e.memoStore(key, res)
	return res, nil
}

// AggregateFull runs one pass and returns the full sorted projection, so a
// caller can re-slice to different TopN values ("top 5", "show all", zoom)
// without re-aggregating. Full projections are not memoized.
func (e *Engine) AggregateFull(ctx context.Context, ds *bom.Dataset, snap filter.Snapshot, req Request) (*project.Projection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNilDataset
	}
	if !knownRequestDimension(req.Dimension) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, req.Dimension)
	}

	return recovery.GuardValue(e.logger, "aggregate", func() (*project.Projection, error) {
		agg, err := aggregate.Run(ds, snap, aggregate.Request{
			Dimension: req.Dimension,
			RawType:   req.RawType,
		})
		if err != nil {
			return nil, err
		}
		return project.New(agg.Entries), nil
	})
}

// TableRows runs a table-view pass and returns its sorted level-1 rows.
// The dimension must be DimensionSupplierTable or DimensionHWOwnerTable.
func (e *Engine) TableRows(ctx context.Context, ds *bom.Dataset, snap filter.Snapshot, dim Dimension) ([]aggregate.TableRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNilDataset
	}
	if dim != DimensionSupplierTable && dim != DimensionHWOwnerTable {
		return nil, fmt.Errorf("%w: %q is not a table dimension", ErrUnknownDimension, dim)
	}

	return recovery.GuardValue(e.logger, "table", func() ([]aggregate.TableRow, error) {
		agg, err := aggregate.Run(ds, snap, aggregate.Request{Dimension: dim})
		if err != nil {
			return nil, err
		}
		return project.SortRows(agg.Rows), nil
	})
}

func knownRequestDimension(d Dimension) bool {
	switch d {
	case DimensionRawType, DimensionRMSupplier, DimensionSupplierTable, DimensionHWOwnerTable:
		return true
	}
	return false
}

// memoKey combines everything a pass depends on. The dataset participates
// via its version, so callers must bump the version when content changes.
func memoKey(ds *bom.Dataset, snap filter.Snapshot, req Request) string {
	return ds.Version + "|" +
		strconv.FormatUint(snap.Hash(), 16) + "|" +
		string(req.Dimension) + "|" +
		req.RawType + "|" +
		strconv.Itoa(req.TopN)
}

func (e *Engine) memoLookup(key string) (*project.Result, bool) {
	if e.memo == nil {
		return nil, false
	}

	e.mu.Lock()
	blob, ok := e.memo[key]
	e.mu.Unlock()

	if !ok {
		metrics.MemoLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var res project.Result
	if err := e.codec.Unmarshal(blob, &res); err != nil {
		// A blob that no longer decodes is dropped, not fatal.
		e.logger.Warn("dropping undecodable memo entry", "error", err)
		e.mu.Lock()
		delete(e.memo, key)
		e.mu.Unlock()
		metrics.MemoLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.MemoLookups.WithLabelValues("hit").Inc()
	return &res, true
}

func (e *Engine) memoStore(key string, res *project.Result) {
	if e.memo == nil {
		return
	}

	blob, err := e.codec.Marshal(res)
	if err != nil {
		e.logger.Warn("memo encode failed", "error", err)
		return
	}

	e.mu.Lock()
	if len(e.memo) >= e.memoCap {
		// Full reset keeps eviction O(1) and the cache bounded.
		e.memo = make(map[string][]byte)
	}
	e.memo[key] = blob
	e.mu.Unlock()
}
