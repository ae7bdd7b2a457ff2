package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemState tracks the auction lifecycle of an item.
type ItemState string

const (
	StateOpen    ItemState = "open"
	StateSettled ItemState = "settled"
)

// AuctionItem is a sellable listing with a start price and end time. Its bid
// collection is loaded eagerly by the query engine so callers can render the
// current standing without extra round trips.
type AuctionItem struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	StartPrice  int64     `json:"start_price"`
	EndDate     time.Time `json:"end_date"`
	State       ItemState `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Bids        []*Bid    `json:"bids"`
}

// NewAuctionItem validates and builds a fresh open item. The end date must
// lie in the future; the source application only checked this at the form
// layer, which left the data layer open to expired listings.
func NewAuctionItem(id, ownerID uuid.UUID, title, description string, startPrice int64, endDate time.Time, now time.Time) (*AuctionItem, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if startPrice < 0 {
		return nil, ErrNegativeStartPrice
	}
	if !endDate.After(now) {
		return nil, ErrEndDateInPast
	}
	return &AuctionItem{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		StartPrice:  startPrice,
		EndDate:     endDate,
		State:       StateOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
		Bids:        []*Bid{},
	}, nil
}

// CanAcceptBid reports whether the item is still open for bidding at the
// given instant.
func (it *AuctionItem) CanAcceptBid(now time.Time) error {
	if it.State != StateOpen {
		return ErrAuctionClosed
	}
	if !it.EndDate.After(now) {
		return ErrAuctionClosed
	}
	return nil
}

// CheckBidAmount applies the amount rules: positive integer and a strict
// floor at the start price, first bid included.
func (it *AuctionItem) CheckBidAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount <= it.StartPrice {
		return ErrBidBelowStartPrice
	}
	return nil
}

// ItemUpdate carries the mutable fields of an item.
type ItemUpdate struct {
	Title       string
	Description string
	Image       string
	StartPrice  int64
	EndDate     time.Time
}

// ApplyUpdate mutates the item from upd. Start price and end date freeze as
// soon as any bid exists, because changing them would invalidate comparisons
// already made for placed bids.
func (it *AuctionItem) ApplyUpdate(upd ItemUpdate, hasBids bool, now time.Time) error {
	if upd.Title == "" {
		return ErrEmptyTitle
	}
	if hasBids && (upd.StartPrice != it.StartPrice || !upd.EndDate.Equal(it.EndDate)) {
		return ErrItemFrozen
	}
	if !hasBids {
		if upd.StartPrice < 0 {
			return ErrNegativeStartPrice
		}
		if !upd.EndDate.After(now) {
			return ErrEndDateInPast
		}
		it.StartPrice = upd.StartPrice
		it.EndDate = upd.EndDate
	}
	it.Title = upd.Title
	it.Description = upd.Description
	it.Image = upd.Image
	it.UpdatedAt = now
	return nil
}

// Settle flips an expired open item to settled. Callers must hold the item's
// row lock so a settle cannot race an in-flight bid.
func (it *AuctionItem) Settle(now time.Time) error {
	if it.State != StateOpen {
		return ErrAuctionClosed
	}
	it.State = StateSettled
	it.UpdatedAt = now
	return nil
}
