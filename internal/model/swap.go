package model

import "time"

// SwapRequest represents a proposed exchange. The two flows are a tagged
// variant on Kind: an exchange stakes OfferedItemID against RequestedItemID,
// a point swap has no offered item and pays with the requester's balance.
type SwapRequest struct {
	ID              int64      `json:"id"`
	RequesterID     int64      `json:"requester_id"`
	RequestedItemID int64      `json:"requested_item_id"`
	OfferedItemID   *int64     `json:"offered_item_id,omitempty"`
	Kind            string     `json:"kind"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	RequesterName  string `json:"requester_name,omitempty"`
	RequestedTitle string `json:"requested_title,omitempty"`
	OfferedTitle   string `json:"offered_title,omitempty"`
}

// Swap kinds.
const (
	SwapKindExchange = "exchange"
	SwapKindPoints   = "points"
)

// Swap statuses. Cancellation removes the row instead of transitioning.
const (
	SwapStatusPending   = "pending"
	SwapStatusCompleted = "completed"
	SwapStatusDeclined  = "declined"
)

// IsExchange reports whether the request is an item-for-item exchange.
func (s *SwapRequest) IsExchange() bool {
	return s.Kind == SwapKindExchange
}
