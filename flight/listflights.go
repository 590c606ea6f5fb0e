package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ListFlights enumerates the servable views, one FlightInfo per view.
// Clients use this for discovery before requesting data.
//
// Criteria parameter is currently ignored (returns all views).
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	s.logger.Debug("ListFlights called", "views", len(Views))

	for _, view := range Views {
		ticket, err := EncodeTicket(TicketData{View: view})
		if err != nil {
			s.logger.Error("Failed to encode ticket", "view", view, "error", err)
			return status.Errorf(codes.Internal, "encode ticket for %s: %v", view, err)
		}

		desc := &flight.FlightDescriptor{
			Type: flight.DescriptorPATH,
			Path: []string{view},
		}
		if err := stream.Send(s.flightInfo(view, desc, ticket)); err != nil {
			s.logger.Error("Failed to send FlightInfo", "view", view, "error", err)
			return status.Errorf(codes.Internal, "send flight info: %v", err)
		}
	}

	return nil
}
