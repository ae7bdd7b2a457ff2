package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	"github.com/mpusnik/auctionhub/internal/shared/db"
)

// FinalizeExpiredUseCase is the auction lifecycle evaluator. On each sweep it
// settles open items whose end date has passed, taking the same per-item row
// lock as bid placement so a sweep can never race an in-flight bid.
type FinalizeExpiredUseCase struct {
	itemRepo domain.AuctionItemRepository
	bidRepo  domain.BidRepository
	dbPool   db.PgxPool
	events   EventPublisher
}

func NewFinalizeExpiredUseCase(
	itemRepo domain.AuctionItemRepository,
	bidRepo domain.BidRepository,
	dbPool db.PgxPool,
	events EventPublisher,
) *FinalizeExpiredUseCase {
	if events == nil {
		events = NopPublisher{}
	}
	return &FinalizeExpiredUseCase{
		itemRepo: itemRepo,
		bidRepo:  bidRepo,
		dbPool:   dbPool,
		events:   events,
	}
}

// Execute sweeps once and returns the number of items settled. A failure on
// one item is logged and does not stop the sweep.
func (uc *FinalizeExpiredUseCase) Execute(ctx context.Context) (int, error) {
	ids, err := uc.itemRepo.ListExpiredOpen(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("finalize: failed to list expired items: %w", err)
	}

	settled := 0
	for _, id := range ids {
		winner, err := uc.settleOne(ctx, id)
		if err != nil {
			// a racing sweep got the lock first and settled the item
			if errors.Is(err, domain.ErrAuctionClosed) {
				continue
			}
			log.Error("Failed to settle auction item",
				zap.String("itemID", id.String()),
				zap.Error(err),
			)
			continue
		}
		settled++
		uc.events.PublishAuctionSettled(id, winner)
	}
	if settled > 0 {
		log.Info("Lifecycle sweep settled items", zap.Int("settled", settled), zap.Int("candidates", len(ids)))
	}
	return settled, nil
}

func (uc *FinalizeExpiredUseCase) settleOne(ctx context.Context, id uuid.UUID) (winner *domain.Bid, err error) {
	tx, err := uc.dbPool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = fmt.Errorf("failed to commit transaction: %w", e)
			winner = nil
		}
	}()

	item, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// re-check under the lock: the item may have been settled or deleted
	// since the candidate list was taken
	if item.State != domain.StateOpen || item.EndDate.After(now) {
		return nil, domain.ErrAuctionClosed
	}

	winner, err = uc.bidRepo.GetWinningTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = item.Settle(now); err != nil {
		return nil, err
	}
	if err = uc.itemRepo.SetState(ctx, tx, id, domain.StateSettled, now); err != nil {
		return nil, err
	}
	return winner, nil
}
