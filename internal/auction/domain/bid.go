package domain

import (
	"time"

	"github.com/google/uuid"

	userdomain "github.com/mpusnik/auctionhub/internal/user/domain"
)

// BidStatus is the closed set of states a bid can be in relative to its
// rivals. The free-text status field of earlier iterations is gone on purpose.
type BidStatus string

const (
	StatusWinning BidStatus = "Winning"
	StatusOutbid  BidStatus = "Outbid"
)

// Bid is an amount a user offers for an auction item. Exactly one bid per
// item may hold StatusWinning at any time.
type Bid struct {
	ID            uuid.UUID        `json:"id"`
	AuctionItemID uuid.UUID        `json:"auction_item_id"`
	BidderID      uuid.UUID        `json:"bidder_id"`
	Amount        int64            `json:"bid_amount"`
	Status        BidStatus        `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Bidder        *userdomain.User `json:"bidder,omitempty"`
}

// NewBid creates a bid in the given status.
func NewBid(id, itemID, bidderID uuid.UUID, amount int64, status BidStatus, now time.Time) *Bid {
	return &Bid{
		ID:            id,
		AuctionItemID: itemID,
		BidderID:      bidderID,
		Amount:        amount,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// OutbidsAll reports whether amount strictly exceeds every rival bid.
// An empty rival set is trivially outbid.
func OutbidsAll(amount int64, rivals []*Bid) bool {
	for _, r := range rivals {
		if amount <= r.Amount {
			return false
		}
	}
	return true
}

// HighestOf returns the rival bid with the greatest amount, or nil for an
// empty set. Ties resolve to the earliest bid.
func HighestOf(bids []*Bid) *Bid {
	var highest *Bid
	for _, b := range bids {
		if highest == nil || b.Amount > highest.Amount ||
			(b.Amount == highest.Amount && b.CreatedAt.Before(highest.CreatedAt)) {
			highest = b
		}
	}
	return highest
}
