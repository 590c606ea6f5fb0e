// Package flight provides Flight RPC handler implementations serving the
// demand views and the flattened BOM as Arrow record streams.
package flight

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/filter"
)

// SnapshotProvider supplies the active filter selection for each request.
// filterstate.Manager satisfies this interface.
type SnapshotProvider interface {
	Snapshot() filter.Snapshot
}

// Config carries the dependencies of a Flight server.
type Config struct {
	// Dataset is the BOM dataset to serve. MUST NOT be nil.
	Dataset *bom.Dataset

	// Filters supplies per-request filter selections.
	// If nil, every request sees an all-wildcard selection.
	Filters SnapshotProvider

	// Allocator for Arrow memory management.
	// If nil, memory.DefaultAllocator is used.
	Allocator memory.Allocator

	// Logger for internal logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Address is the server's public address for FlightEndpoint locations.
	// If empty, endpoints carry no location URI.
	Address string
}

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	dataset   *bom.Dataset
	filters   SnapshotProvider
	allocator memory.Allocator
	logger    *slog.Logger
	address   string
}

// NewServer creates a Flight server from the given config, filling in
// defaults for optional fields.
func NewServer(config Config) *Server {
	s := &Server{
		dataset:   config.Dataset,
		filters:   config.Filters,
		allocator: config.Allocator,
		logger:    config.Logger,
		address:   config.Address,
	}
	if s.allocator == nil {
		s.allocator = memory.DefaultAllocator
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
// This follows the standard gRPC service registration pattern.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}

// snapshot resolves the active filter selection for one request.
func (s *Server) snapshot() filter.Snapshot {
	if s.filters == nil {
		return filter.Snapshot{}
	}
	return s.filters.Snapshot()
}
