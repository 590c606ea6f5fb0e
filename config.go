package demandview

import (
	"errors"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filterstate"
)

// EngineConfig configures the aggregation engine façade.
type EngineConfig struct {
	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// Valid values: slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// EnableMemo turns on result memoization keyed by
	// (dataset version, filter snapshot, request).
	// OPTIONAL: Off by default; aggregation is a pure function either way.
	EnableMemo bool

	// MemoCapacity bounds the number of cached results before the cache
	// resets. OPTIONAL: If 0, uses DefaultMemoCapacity.
	MemoCapacity int
}

// ServerConfig configures the Flight serving surface.
type ServerConfig struct {
	// Dataset is the BOM dataset to serve.
	// REQUIRED: MUST NOT be nil.
	Dataset *bom.Dataset

	// Filters supplies the active filter selection for each request.
	// OPTIONAL: If nil, every request sees an all-wildcard selection.
	Filters *filterstate.Manager

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored.
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int

	// Address is the server's public address (e.g., "localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations will not include URI.
	Address string
}

// DefaultMemoCapacity bounds the memo cache when EngineConfig.MemoCapacity
// is zero.
const DefaultMemoCapacity = 256

// Standard errors returned by the demandview package.
var (
	// ErrInvalidConfig indicates EngineConfig or ServerConfig validation
	// failed.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNilDataset indicates an operation was called without a dataset.
	ErrNilDataset = errors.New("nil dataset")

	// ErrUnknownDimension indicates a request named an aggregation
	// dimension the engine does not implement.
	ErrUnknownDimension = errors.New("unknown aggregation dimension")
)

// configLogger resolves the Logger/LogLevel pair the way every config in
// this module does: explicit logger wins, else a text handler at the given
// level, else slog.Default().
func configLogger(logger *slog.Logger, level *slog.Level) *slog.Logger {
	if logger != nil {
		return logger
	}
	if level != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: *level,
		}))
	}
	return slog.Default()
}
