package flight

import (
	"encoding/json"
	"fmt"
)

// Views servable over DoGet.
const (
	// ViewRawType streams demand grouped by raw-material type.
	ViewRawType = "rawType"

	// ViewRMSupplier streams demand grouped by raw-material supplier.
	ViewRMSupplier = "rmSupplier"

	// ViewSupplierTable streams the level-1 supplier table.
	ViewSupplierTable = "supplierTable"

	// ViewHWOwnerTable streams the level-1 hardware-owner table.
	ViewHWOwnerTable = "hwOwnerTable"

	// ViewFlatBOM streams the flattened part tree.
	ViewFlatBOM = "flatBom"
)

// Views lists every servable view in stable order.
var Views = []string{
	ViewRawType,
	ViewRMSupplier,
	ViewSupplierTable,
	ViewHWOwnerTable,
	ViewFlatBOM,
}

// TicketData represents the decoded content of a Flight ticket.
// Tickets are opaque byte slices naming the view to stream, plus optional
// view parameters.
type TicketData struct {
	// View names the stream (one of the View* constants).
	View string `json:"view"`

	// RawType scopes ViewRMSupplier to one raw-material type (optional).
	RawType string `json:"rawType,omitempty"`

	// TopN limits aggregation views to the N largest keys (optional,
	// zero means all).
	TopN int `json:"topN,omitempty"`
}

// EncodeTicket creates an opaque ticket for the given view data.
// The ticket is JSON-encoded for simplicity and transparency.
// Returns error if the view is unknown or parameters are invalid.
func EncodeTicket(td TicketData) ([]byte, error) {
	if err := td.validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(td)
	if err != nil {
		return nil, fmt.Errorf("encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses an opaque ticket and validates its content.
func DecodeTicket(ticketBytes []byte) (*TicketData, error) {
	if len(ticketBytes) == 0 {
		return nil, fmt.Errorf("ticket cannot be empty")
	}

	var td TicketData
	if err := json.Unmarshal(ticketBytes, &td); err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	if err := td.validate(); err != nil {
		return nil, err
	}
	return &td, nil
}

func (td TicketData) validate() error {
	if !knownView(td.View) {
		return fmt.Errorf("%w: %q", ErrUnknownView, td.View)
	}
	if td.TopN < 0 {
		return fmt.Errorf("topN must be non-negative, got %d", td.TopN)
	}
	if td.RawType != "" && td.View != ViewRMSupplier {
		return fmt.Errorf("rawType is only valid for view %q", ViewRMSupplier)
	}
	return nil
}

func knownView(v string) bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}
