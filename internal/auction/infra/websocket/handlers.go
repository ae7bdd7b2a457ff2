package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	"github.com/mpusnik/auctionhub/internal/shared/logger"
	"github.com/mpusnik/auctionhub/internal/shared/websocket"
)

var log = logger.GetLogger()

// AuctionFeed exposes per-item live feeds over the shared hub. It implements
// application.EventPublisher, so committed bids and settlements reach every
// subscriber of the item.
type AuctionFeed struct {
	hub *websocket.Hub
}

func NewAuctionFeed(hub *websocket.Hub) *AuctionFeed {
	return &AuctionFeed{hub: hub}
}

// PublishBidPlaced pushes a bid_placed message to the item's feed.
func (f *AuctionFeed) PublishBidPlaced(itemID uuid.UUID, bid *domain.Bid) {
	msg := BidPlacedMessage{BaseMessage: BaseMessage{Type: MessageTypeBidPlaced}}
	msg.Payload.ItemID = itemID
	msg.Payload.BidID = bid.ID
	msg.Payload.BidderID = bid.BidderID
	msg.Payload.Amount = bid.Amount
	msg.Payload.Status = string(bid.Status)
	msg.Payload.PlacedAt = bid.CreatedAt

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("Failed to serialize bid_placed message", zap.Error(err))
		return
	}
	f.hub.BroadcastToItem(itemID.String(), data)
}

// PublishAuctionSettled pushes an auction_settled message to the item's feed.
func (f *AuctionFeed) PublishAuctionSettled(itemID uuid.UUID, winner *domain.Bid) {
	msg := AuctionSettledMessage{BaseMessage: BaseMessage{Type: MessageTypeAuctionSettled}}
	msg.Payload.ItemID = itemID
	if winner != nil {
		msg.Payload.BidID = &winner.ID
		msg.Payload.WinnerID = &winner.BidderID
		msg.Payload.Amount = &winner.Amount
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("Failed to serialize auction_settled message", zap.Error(err))
		return
	}
	f.hub.BroadcastToItem(itemID.String(), data)
}

// UpgradeMiddleware rejects non-websocket requests on the feed route.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// SubscribeHandler upgrades the connection and registers it on the item's
// feed until the peer disconnects or the context is cancelled.
func (f *AuctionFeed) SubscribeHandler(ctx context.Context) fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		itemID, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			_ = conn.Close()
			return
		}

		client := &websocket.Client{
			Hub:    f.hub,
			Conn:   conn,
			Send:   make(chan []byte, 16),
			ItemID: itemID.String(),
			ID:     uuid.New().String(),
		}
		f.hub.RegisterClient(client)

		go client.WritePump(ctx)
		client.ReadPump(ctx)
	})
}
