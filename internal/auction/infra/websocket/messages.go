package websocket

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies a live-feed message.
type MessageType string

const (
	MessageTypeBidPlaced      MessageType = "bid_placed"
	MessageTypeAuctionSettled MessageType = "auction_settled"
)

// BaseMessage is the envelope shared by all feed messages.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// BidPlacedMessage is pushed to an item's feed after a bid commits.
type BidPlacedMessage struct {
	BaseMessage
	Payload struct {
		ItemID   uuid.UUID `json:"auction_item_id"`
		BidID    uuid.UUID `json:"bid_id"`
		BidderID uuid.UUID `json:"bidder_id"`
		Amount   int64     `json:"bid_amount"`
		Status   string    `json:"status"`
		PlacedAt time.Time `json:"placed_at"`
	} `json:"payload"`
}

// AuctionSettledMessage is pushed when the lifecycle sweep settles an item.
// Winner fields are omitted when the item closed without bids.
type AuctionSettledMessage struct {
	BaseMessage
	Payload struct {
		ItemID   uuid.UUID  `json:"auction_item_id"`
		BidID    *uuid.UUID `json:"winning_bid_id,omitempty"`
		WinnerID *uuid.UUID `json:"winner_id,omitempty"`
		Amount   *int64     `json:"winning_amount,omitempty"`
	} `json:"payload"`
}
