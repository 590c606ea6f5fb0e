package flight

import (
	"context"
	"encoding/json"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetFlightInfo returns schema metadata and a ticket for one view.
//
// Two descriptor forms are accepted:
//   - PATH with [view] or [view, raw_type]
//   - CMD holding a JSON-encoded TicketData
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	td, err := ticketFromDescriptor(desc)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid descriptor: %v", err)
	}

	s.logger.Debug("GetFlightInfo request",
		"view", td.View,
		"raw_type", td.RawType,
	)

	ticket, err := EncodeTicket(*td)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode ticket: %v", err)
	}

	return s.flightInfo(td.View, desc, ticket), nil
}

// GetSchema returns the Arrow schema for one view without a ticket.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	td, err := ticketFromDescriptor(desc)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid descriptor: %v", err)
	}

	return &flight.SchemaResult{
		Schema: flight.SerializeSchema(viewSchema(td.View), s.allocator),
	}, nil
}

func ticketFromDescriptor(desc *flight.FlightDescriptor) (*TicketData, error) {
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		td := &TicketData{}
		switch len(path) {
		case 1:
			td.View = path[0]
		case 2:
			td.View = path[0]
			td.RawType = path[1]
		default:
			return nil, ErrUnknownView
		}
		if err := td.validate(); err != nil {
			return nil, err
		}
		return td, nil

	case flight.DescriptorCMD:
		var td TicketData
		if err := json.Unmarshal(desc.GetCmd(), &td); err != nil {
			return nil, err
		}
		if err := td.validate(); err != nil {
			return nil, err
		}
		return &td, nil
	}
	return nil, ErrUnknownView
}

// flightInfo assembles the FlightInfo envelope for one view.
func (s *Server) flightInfo(view string, desc *flight.FlightDescriptor, ticket []byte) *flight.FlightInfo {
	endpoint := &flight.FlightEndpoint{
		Ticket: &flight.Ticket{Ticket: ticket},
	}
	if s.address != "" {
		endpoint.Location = []*flight.Location{
			{Uri: "grpc+tcp://" + s.address},
		}
	}

	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(viewSchema(view), s.allocator),
		FlightDescriptor: desc,
		Endpoint:         []*flight.FlightEndpoint{endpoint},
		TotalRecords:     -1,
		TotalBytes:       -1,
	}
}
