package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	"github.com/mpusnik/auctionhub/internal/shared/db"
	"github.com/mpusnik/auctionhub/internal/shared/logger"
	userdomain "github.com/mpusnik/auctionhub/internal/user/domain"
)

var log = logger.GetLogger()

// PlaceBidDTO carries the data needed to place a bid. The bidder id comes
// from the auth collaborator, never from ambient state.
type PlaceBidDTO struct {
	ItemID   uuid.UUID
	BidderID uuid.UUID
	Amount   int64
}

// PlaceBidUseCase runs the bid placement engine. The whole read-decide-write
// sequence executes inside one transaction holding the auction item's row
// lock, so concurrent bidders on the same item serialize and at most one bid
// per item ever holds StatusWinning.
type PlaceBidUseCase struct {
	itemRepo domain.AuctionItemRepository
	bidRepo  domain.BidRepository
	userRepo userdomain.UserRepository
	dbPool   db.PgxPool
	events   EventPublisher
}

func NewPlaceBidUseCase(
	itemRepo domain.AuctionItemRepository,
	bidRepo domain.BidRepository,
	userRepo userdomain.UserRepository,
	dbPool db.PgxPool,
	events EventPublisher,
) *PlaceBidUseCase {
	if events == nil {
		events = NopPublisher{}
	}
	return &PlaceBidUseCase{
		itemRepo: itemRepo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		dbPool:   dbPool,
		events:   events,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	if cmd.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	exists, err := uc.userRepo.Exists(ctx, cmd.BidderID)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to check bidder %s: %w", cmd.BidderID, err)
	}
	if !exists {
		return nil, domain.ErrBidderNotFound
	}

	bid, err := uc.placeInTx(ctx, cmd)
	if err != nil {
		return nil, err
	}

	log.Info("Bid placed",
		zap.String("itemID", cmd.ItemID.String()),
		zap.String("bidID", bid.ID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.Int64("amount", cmd.Amount),
		zap.String("status", string(bid.Status)),
	)
	uc.events.PublishBidPlaced(cmd.ItemID, bid)
	return bid, nil
}

// placeInTx holds the item row lock from the rivals read through the status
// writes. The new bid insert and all demotions commit together or not at all.
func (uc *PlaceBidUseCase) placeInTx(ctx context.Context, cmd PlaceBidDTO) (bid *domain.Bid, err error) {
	tx, err := uc.dbPool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = fmt.Errorf("place bid: failed to commit transaction: %w", e)
			bid = nil
		}
	}()

	item, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, cmd.ItemID)
	if err != nil {
		if !errors.Is(err, domain.ErrItemNotFound) {
			err = fmt.Errorf("place bid: failed to load auction item %s: %w", cmd.ItemID, err)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err = item.CanAcceptBid(now); err != nil {
		log.Warn("Bid rejected: auction closed",
			zap.String("itemID", item.ID.String()),
			zap.String("state", string(item.State)),
			zap.Time("endDate", item.EndDate),
		)
		return nil, err
	}
	if err = item.CheckBidAmount(cmd.Amount); err != nil {
		return nil, err
	}

	rivals, err := uc.bidRepo.ListByItemTx(ctx, tx, cmd.ItemID)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to load rival bids for item %s: %w", cmd.ItemID, err)
	}

	status := domain.StatusOutbid
	if domain.OutbidsAll(cmd.Amount, rivals) {
		status = domain.StatusWinning
		if len(rivals) > 0 {
			if err = uc.bidRepo.DemoteAll(ctx, tx, cmd.ItemID, now); err != nil {
				return nil, fmt.Errorf("place bid: failed to demote rival bids for item %s: %w", cmd.ItemID, err)
			}
		}
	}

	bid = domain.NewBid(uuid.New(), cmd.ItemID, cmd.BidderID, cmd.Amount, status, now)
	if err = uc.bidRepo.Insert(ctx, tx, bid); err != nil {
		// 23503: the bidder row vanished between the existence check and the
		// insert. The item cannot be the missing reference, its row is locked.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			err = domain.ErrBidderNotFound
			return nil, err
		}
		return nil, fmt.Errorf("place bid: failed to save bid for item %s: %w", cmd.ItemID, err)
	}

	return bid, nil
}
