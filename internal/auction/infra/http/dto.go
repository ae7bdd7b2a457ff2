package http

import "time"

// PlaceBidRequest is the body of POST /bids/:auctionItemId. The bidder id is
// explicit request data, not ambient session state.
type PlaceBidRequest struct {
	BidderID  string `json:"bidder_id" validate:"required,uuid"`
	BidAmount int64  `json:"bid_amount" validate:"required,gt=0"`
}

// CreateUpdateItemRequest is the body of POST /auctions and PATCH /auctions/:id.
type CreateUpdateItemRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Image       string    `json:"image"`
	StartPrice  int64     `json:"start_price" validate:"gte=0"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
