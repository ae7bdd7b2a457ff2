package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuctionItemRepository is the persistence port for auction items. Methods
// taking a pgx.Tx participate in a caller-owned transaction; the *ForUpdate
// variant acquires the item's row lock, which is the per-item serialization
// point for bid placement and settlement.
type AuctionItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*AuctionItem, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*AuctionItem, error)
	Create(ctx context.Context, item *AuctionItem) error
	Update(ctx context.Context, item *AuctionItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetState(ctx context.Context, tx pgx.Tx, id uuid.UUID, state ItemState, now time.Time) error

	ListAll(ctx context.Context, limit, offset int) ([]*AuctionItem, error)
	CountAll(ctx context.Context) (int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*AuctionItem, error)
	ListBidded(ctx context.Context, userID uuid.UUID) ([]*AuctionItem, error)
	ListWon(ctx context.Context, userID uuid.UUID, now time.Time) ([]*AuctionItem, error)
	ListWinning(ctx context.Context, userID uuid.UUID, now time.Time) ([]*AuctionItem, error)
	ListExpiredOpen(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// BidRepository is the persistence port for bids.
type BidRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, bid *Bid) error
	DemoteAll(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, now time.Time) error
	ListByItemTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) ([]*Bid, error)
	GetWinningTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*Bid, error)

	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*Bid, error)
	ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*Bid, error)
	ListByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*Bid, error)
}
