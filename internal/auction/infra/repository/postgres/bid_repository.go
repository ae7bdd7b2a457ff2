package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	"github.com/mpusnik/auctionhub/internal/shared/db"
	userdomain "github.com/mpusnik/auctionhub/internal/user/domain"
)

const bidColumns = `id, auction_item_id, bidder_id, amount, status, created_at, updated_at`

// BidRepository implements domain.BidRepository.
type BidRepository struct {
	pool db.PgxPool
}

func NewBidRepository(pool db.PgxPool) *BidRepository {
	return &BidRepository{pool: pool}
}

func scanBid(row pgx.Row) (*domain.Bid, error) {
	b := &domain.Bid{}
	err := row.Scan(
		&b.ID,
		&b.AuctionItemID,
		&b.BidderID,
		&b.Amount,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BidRepository) Insert(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_item_id, bidder_id, amount, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionItemID,
		bid.BidderID,
		bid.Amount,
		bid.Status,
		bid.CreatedAt,
		bid.UpdatedAt,
	)
	return err
}

// DemoteAll rewrites every bid for the item to Outbid. Runs inside the
// placement transaction, just before the new Winning bid is inserted.
func (r *BidRepository) DemoteAll(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, now time.Time) error {
	query := `UPDATE bids SET status = $2, updated_at = $3 WHERE auction_item_id = $1`
	_, err := tx.Exec(ctx, query, itemID, domain.StatusOutbid, now)
	return err
}

// ListByItemTx reads the rival set inside the placement transaction, under
// the item's row lock.
func (r *BidRepository) ListByItemTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_item_id = $1 ORDER BY created_at ASC`
	rows, err := tx.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// GetWinningTx returns the item's Winning bid, or nil when no bid exists.
func (r *BidRepository) GetWinningTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_item_id = $1 AND status = $2`
	b, err := scanBid(tx.QueryRow(ctx, query, itemID, domain.StatusWinning))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func scanBidsWithBidder(rows pgx.Rows) ([]*domain.Bid, error) {
	defer rows.Close()
	var bids []*domain.Bid
	for rows.Next() {
		b := &domain.Bid{Bidder: &userdomain.User{}}
		err := rows.Scan(
			&b.ID,
			&b.AuctionItemID,
			&b.BidderID,
			&b.Amount,
			&b.Status,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.Bidder.ID,
			&b.Bidder.Email,
			&b.Bidder.FirstName,
			&b.Bidder.LastName,
			&b.Bidder.Avatar,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// ListByItem returns all bids for an item with the bidder relation populated.
func (r *BidRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT b.id, b.auction_item_id, b.bidder_id, b.amount, b.status, b.created_at, b.updated_at,
               u.id, u.email, u.first_name, u.last_name, u.avatar
        FROM bids b
        JOIN users u ON u.id = b.bidder_id
        WHERE b.auction_item_id = $1
        ORDER BY b.created_at ASC
    `
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	return scanBidsWithBidder(rows)
}

// ListByBidder returns all bids a user has placed, newest first.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT b.id, b.auction_item_id, b.bidder_id, b.amount, b.status, b.created_at, b.updated_at,
               u.id, u.email, u.first_name, u.last_name, u.avatar
        FROM bids b
        JOIN users u ON u.id = b.bidder_id
        WHERE b.bidder_id = $1
        ORDER BY b.created_at DESC
    `
	rows, err := r.pool.Query(ctx, query, bidderID)
	if err != nil {
		return nil, err
	}
	return scanBidsWithBidder(rows)
}

// ListByItemIDs fetches bids for a batch of items in one query so list
// endpoints can attach bid collections without N+1 round trips.
func (r *BidRepository) ListByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*domain.Bid, error) {
	byItem := make(map[uuid.UUID][]*domain.Bid, len(itemIDs))
	if len(itemIDs) == 0 {
		return byItem, nil
	}

	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_item_id = ANY($1) ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		byItem[b.AuctionItemID] = append(byItem[b.AuctionItemID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return byItem, nil
}
