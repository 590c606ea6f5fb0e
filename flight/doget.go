package flight

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hangar-lab/demandview-go/aggregate"
	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/project"
)

// flatBatchSize bounds rows per record when streaming the flattened BOM.
const flatBatchSize = 1024

// DoGet streams Arrow record batches for one view.
//
// The ticket must be encoded using EncodeTicket. The handler:
//  1. Decodes and validates the ticket
//  2. Runs the aggregation (or flattening) under the active filter selection
//  3. Streams record batches using Arrow IPC format
//  4. Respects context cancellation between batches
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := stream.Context()

	td, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	s.logger.Debug("DoGet request",
		"view", td.View,
		"raw_type", td.RawType,
		"top_n", td.TopN,
	)

	records, err := s.buildViewRecords(td)
	if err != nil {
		s.logger.Error("Failed to build view", "view", td.View, "error", err)
		return status.Errorf(codes.Internal, "build view %s: %v", td.View, err)
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(viewSchema(td.View)), ipc.WithAllocator(s.allocator))
	defer writer.Close()

	// Unwritten records are released on any early return.
	defer releaseAll(records)

	totalRows := int64(0)
	for i, record := range records {
		select {
		case <-ctx.Done():
			return status.Errorf(codes.Canceled, "stream cancelled: %v", ctx.Err())
		default:
		}

		if err := writer.Write(record); err != nil {
			s.logger.Error("Failed to write record batch", "view", td.View, "error", err)
			return status.Errorf(codes.Internal, "write record batch: %v", err)
		}
		totalRows += record.NumRows()
		record.Release()
		records[i] = nil
	}

	s.logger.Debug("DoGet completed",
		"view", td.View,
		"batches", len(records),
		"rows", totalRows,
	)
	return nil
}

// buildViewRecords materializes one view under the current filter
// selection. Returned records are owned by the caller.
func (s *Server) buildViewRecords(td *TicketData) ([]arrow.Record, error) {
	snap := s.snapshot()

	switch td.View {
	case ViewRawType, ViewRMSupplier:
		dim := aggregate.DimensionRawType
		if td.View == ViewRMSupplier {
			dim = aggregate.DimensionRMSupplier
		}
		res, err := aggregate.Run(s.dataset, snap, aggregate.Request{
			Dimension: dim,
			RawType:   td.RawType,
		})
		if err != nil {
			return nil, err
		}
		projected := project.New(res.Entries).Result(td.TopN)
		return []arrow.Record{buildDemandRecord(s.allocator, projected)}, nil

	case ViewSupplierTable, ViewHWOwnerTable:
		dim := aggregate.DimensionSupplierTable
		if td.View == ViewHWOwnerTable {
			dim = aggregate.DimensionHWOwnerTable
		}
		res, err := aggregate.Run(s.dataset, snap, aggregate.Request{Dimension: dim})
		if err != nil {
			return nil, err
		}
		return []arrow.Record{buildTableRecord(s.allocator, project.SortRows(res.Rows))}, nil

	case ViewFlatBOM:
		return buildFlatRecords(s.allocator, bom.Flatten(s.dataset), flatBatchSize), nil
	}

	return nil, ErrUnknownView
}

func releaseAll(records []arrow.Record) {
	for _, r := range records {
		if r != nil {
			r.Release()
		}
	}
}
