package demandview

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hangar-lab/demandview-go/flight"
)

// NewServer registers the demand-view Flight service handlers on the
// provided gRPC server.
//
// The function:
//  1. Validates the ServerConfig
//  2. Creates the Flight service implementation
//  3. Registers it on grpcServer
//
// Returns error if config is invalid (e.g., nil Dataset).
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
//
// Example:
//
//	grpcServer := grpc.NewServer(demandview.ServerOptions(config)...)
//	err := demandview.NewServer(grpcServer, demandview.ServerConfig{
//	    Dataset: ds,
//	    Filters: filters,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) error {
	if config.Dataset == nil {
		return fmt.Errorf("%w: dataset is required", ErrInvalidConfig)
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	logger := configLogger(config.Logger, config.LogLevel)

	flightConfig := flight.Config{
		Dataset:   config.Dataset,
		Allocator: allocator,
		Logger:    logger,
		Address:   config.Address,
	}
	if config.Filters != nil {
		flightConfig.Filters = config.Filters
	}
	flightServer := flight.NewServer(flightConfig)
	flight.RegisterFlightServer(grpcServer, flightServer)

	logger.Info("demand-view Flight server registered",
		"dataset_version", config.Dataset.Version,
		"max_message_size", config.MaxMessageSize,
	)
	return nil
}

// ServerOptions returns gRPC server options matching the config.
// Use this when creating the gRPC server that NewServer registers on.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption
	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}
	return opts
}
