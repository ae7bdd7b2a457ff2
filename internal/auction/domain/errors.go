package domain

import "errors"

var (
	ErrItemNotFound       = errors.New("auction item not found")
	ErrBidderNotFound     = errors.New("bidder not found")
	ErrAuctionClosed      = errors.New("auction is closed for bidding")
	ErrInvalidAmount      = errors.New("bid amount must be a positive integer")
	ErrBidBelowStartPrice = errors.New("bid amount does not exceed the start price")
	ErrEndDateInPast      = errors.New("end date must be in the future")
	ErrEmptyTitle         = errors.New("auction item title must not be empty")
	ErrNegativeStartPrice = errors.New("start price must not be negative")
	ErrItemFrozen         = errors.New("start price and end date cannot change once bids exist")
	ErrNotOwner           = errors.New("auction item belongs to another user")
)
