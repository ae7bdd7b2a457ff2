package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	"github.com/mpusnik/auctionhub/internal/shared/db"
)

const itemColumns = `id, user_id, title, description, image, start_price, end_date, state, created_at, updated_at`

// AuctionItemRepository implements domain.AuctionItemRepository.
type AuctionItemRepository struct {
	pool db.PgxPool
}

func NewAuctionItemRepository(pool db.PgxPool) *AuctionItemRepository {
	return &AuctionItemRepository{pool: pool}
}

func scanItem(row pgx.Row) (*domain.AuctionItem, error) {
	it := &domain.AuctionItem{}
	err := row.Scan(
		&it.ID,
		&it.OwnerID,
		&it.Title,
		&it.Description,
		&it.Image,
		&it.StartPrice,
		&it.EndDate,
		&it.State,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

func scanItems(rows pgx.Rows) ([]*domain.AuctionItem, error) {
	defer rows.Close()
	var items []*domain.AuctionItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *AuctionItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionItem, error) {
	query := `SELECT ` + itemColumns + ` FROM auction_items WHERE id = $1`
	return scanItem(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate loads the item under its row lock. Every place-bid and
// settlement transaction goes through here, which serializes read-decide-write
// sequences per item.
func (r *AuctionItemRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.AuctionItem, error) {
	query := `SELECT ` + itemColumns + ` FROM auction_items WHERE id = $1 FOR UPDATE`
	return scanItem(tx.QueryRow(ctx, query, id))
}

func (r *AuctionItemRepository) Create(ctx context.Context, item *domain.AuctionItem) error {
	query := `
        INSERT INTO auction_items (id, user_id, title, description, image, start_price, end_date, state, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Image,
		item.StartPrice,
		item.EndDate,
		item.State,
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

func (r *AuctionItemRepository) Update(ctx context.Context, item *domain.AuctionItem) error {
	query := `
        UPDATE auction_items
        SET title = $2, description = $3, image = $4, start_price = $5, end_date = $6, updated_at = $7
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Image,
		item.StartPrice,
		item.EndDate,
		item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *AuctionItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auction_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *AuctionItemRepository) SetState(ctx context.Context, tx pgx.Tx, id uuid.UUID, state domain.ItemState, now time.Time) error {
	query := `UPDATE auction_items SET state = $2, updated_at = $3 WHERE id = $1`
	_, err := tx.Exec(ctx, query, id, state, now)
	return err
}

func (r *AuctionItemRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.AuctionItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM auction_items
        ORDER BY end_date ASC
        LIMIT $1 OFFSET $2
    `
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *AuctionItemRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM auction_items`).Scan(&total)
	return total, err
}

func (r *AuctionItemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.AuctionItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM auction_items
        WHERE user_id = $1
        ORDER BY end_date ASC
    `
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// ListBidded returns items the user has placed any bid on, regardless of
// the bid's status.
func (r *AuctionItemRepository) ListBidded(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	query := `
        SELECT DISTINCT i.id, i.user_id, i.title, i.description, i.image, i.start_price, i.end_date, i.state, i.created_at, i.updated_at
        FROM auction_items i
        JOIN bids b ON b.auction_item_id = i.id
        WHERE b.bidder_id = $1
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// ListWon returns items where the user holds the Winning bid and the end
// date has passed.
func (r *AuctionItemRepository) ListWon(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.AuctionItem, error) {
	query := `
        SELECT i.id, i.user_id, i.title, i.description, i.image, i.start_price, i.end_date, i.state, i.created_at, i.updated_at
        FROM auction_items i
        JOIN bids b ON b.auction_item_id = i.id
        WHERE b.bidder_id = $1 AND b.status = $2 AND i.end_date < $3
    `
	rows, err := r.pool.Query(ctx, query, userID, domain.StatusWinning, now)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// ListWinning is the in-progress counterpart of ListWon: same status
// condition with the end date still in the future.
func (r *AuctionItemRepository) ListWinning(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.AuctionItem, error) {
	query := `
        SELECT i.id, i.user_id, i.title, i.description, i.image, i.start_price, i.end_date, i.state, i.created_at, i.updated_at
        FROM auction_items i
        JOIN bids b ON b.auction_item_id = i.id
        WHERE b.bidder_id = $1 AND b.status = $2 AND i.end_date >= $3
    `
	rows, err := r.pool.Query(ctx, query, userID, domain.StatusWinning, now)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// ListExpiredOpen returns ids of open items whose end date has passed,
// candidates for the lifecycle sweep.
func (r *AuctionItemRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `SELECT id FROM auction_items WHERE state = $1 AND end_date <= $2`
	rows, err := r.pool.Query(ctx, query, domain.StateOpen, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
