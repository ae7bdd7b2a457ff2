package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/shared/logger"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Hub keeps the registry of live-feed subscribers, grouped by auction item
// id, and fans broadcast messages out to them. Bidding itself goes over
// REST; the feed is outbound only.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// Client is one websocket subscription to a single auction item's feed.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	ItemID string
	ID     string
}

type Message struct {
	ItemID string
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run services the hub channels until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info("Websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Websocket hub shutting down")
			close(h.done)
			return

		case client := <-h.register:
			if _, ok := h.clients[client.ItemID]; !ok {
				h.clients[client.ItemID] = make(map[*Client]bool)
			}
			h.clients[client.ItemID][client] = true
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("itemID", client.ItemID),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.ItemID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.ItemID)
					}
					log.Info("Client unregistered",
						zap.String("clientID", client.ID),
						zap.String("itemID", client.ItemID),
					)
				}
			}

		case message := <-h.broadcast:
			for client := range h.clients[message.ItemID] {
				select {
				case client.Send <- message.Data:
				default:
					// client not draining its queue, drop it
					close(client.Send)
					delete(h.clients[message.ItemID], client)
					log.Warn("Dropping slow websocket client",
						zap.String("clientID", client.ID),
						zap.String("itemID", client.ItemID),
					)
				}
			}
		}
	}
}

// RegisterClient hands the client to the hub goroutine. Blocks until the hub
// picks it up; a no-op once the hub has shut down. Called from per-connection
// goroutines, where blocking is safe.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToItem queues data for every subscriber of the given item feed.
func (h *Hub) BroadcastToItem(itemID string, data []byte) {
	select {
	case h.broadcast <- &Message{ItemID: itemID, Data: data}:
	default:
		log.Error("Broadcast channel full, message dropped", zap.String("itemID", itemID))
	}
}

// ReadPump consumes (and discards) client frames so pings/pongs and close
// handshakes work. One goroutine per connection.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("Websocket read error",
					zap.String("clientID", c.ID),
					zap.String("itemID", c.ItemID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump pumps hub messages to the connection and keeps it alive with
// pings. One goroutine per connection; the single writer for it.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
