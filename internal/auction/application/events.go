package application

import (
	"github.com/google/uuid"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
)

// EventPublisher receives domain events after the owning transaction has
// committed. The websocket layer implements it to push live updates.
type EventPublisher interface {
	PublishBidPlaced(itemID uuid.UUID, bid *domain.Bid)
	PublishAuctionSettled(itemID uuid.UUID, winner *domain.Bid)
}

// NopPublisher discards events. Used when no live feed is wired up.
type NopPublisher struct{}

func (NopPublisher) PublishBidPlaced(uuid.UUID, *domain.Bid)      {}
func (NopPublisher) PublishAuctionSettled(uuid.UUID, *domain.Bid) {}
