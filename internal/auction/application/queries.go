package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
)

// PageSize is the fixed page size of the paginated item listing.
const PageSize = 10

// PaginatedItems is the envelope returned by the paginated listing.
type PaginatedItems struct {
	Data []*domain.AuctionItem `json:"data"`
	Meta PageMeta              `json:"meta"`
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"last_page"`
	PerPage  int   `json:"per_page"`
}

// AuctionQueries is the read side of the auction module. Every multi-item
// listing attaches the bid collections in a single batched query.
type AuctionQueries struct {
	itemRepo domain.AuctionItemRepository
	bidRepo  domain.BidRepository
}

func NewAuctionQueries(itemRepo domain.AuctionItemRepository, bidRepo domain.BidRepository) *AuctionQueries {
	return &AuctionQueries{itemRepo: itemRepo, bidRepo: bidRepo}
}

func (q *AuctionQueries) attachBids(ctx context.Context, items []*domain.AuctionItem) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	byItem, err := q.bidRepo.ListByItemIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("queries: failed to load bids for %d items: %w", len(items), err)
	}
	for _, it := range items {
		bids := byItem[it.ID]
		if bids == nil {
			bids = []*domain.Bid{}
		}
		it.Bids = bids
	}
	return nil
}

// ListAll returns one page of items, soonest-ending first.
func (q *AuctionQueries) ListAll(ctx context.Context, page int) (*PaginatedItems, error) {
	if page < 1 {
		page = 1
	}
	total, err := q.itemRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to count auction items: %w", err)
	}
	items, err := q.itemRepo.ListAll(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to list auction items: %w", err)
	}
	if err := q.attachBids(ctx, items); err != nil {
		return nil, err
	}
	lastPage := int((total + PageSize - 1) / PageSize)
	if lastPage < 1 {
		lastPage = 1
	}
	if items == nil {
		items = []*domain.AuctionItem{}
	}
	return &PaginatedItems{
		Data: items,
		Meta: PageMeta{Total: total, Page: page, LastPage: lastPage, PerPage: PageSize},
	}, nil
}

// ListEverything returns all items without pagination, soonest-ending first.
func (q *AuctionQueries) ListEverything(ctx context.Context) ([]*domain.AuctionItem, error) {
	total, err := q.itemRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to count auction items: %w", err)
	}
	if total == 0 {
		return []*domain.AuctionItem{}, nil
	}
	items, err := q.itemRepo.ListAll(ctx, int(total), 0)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to list auction items: %w", err)
	}
	if err := q.attachBids(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByOwner returns the items a user has posted, soonest-ending first.
func (q *AuctionQueries) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.AuctionItem, error) {
	items, err := q.itemRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to list items for owner %s: %w", ownerID, err)
	}
	if err := q.attachBids(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListBidded returns every item the user has placed any bid on.
func (q *AuctionQueries) ListBidded(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	items, err := q.itemRepo.ListBidded(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to list bidded items for user %s: %w", userID, err)
	}
	if err := q.attachBids(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListWon returns items the user holds the Winning bid on whose end date has
// passed. Mutually exclusive with ListWinning for any item/user pair.
func (q *AuctionQueries) ListWon(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	items, err := q.itemRepo.ListWon(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("queries: failed to list won items for user %s: %w", userID, err)
	}
	if err := q.attachBids(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListWinning returns items the user holds the Winning bid on that are still
// in progress.
func (q *AuctionQueries) ListWinning(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	items, err := q.itemRepo.ListWinning(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("queries: failed to list winning items for user %s: %w", userID, err)
	}
	if err := q.attachBids(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns a single item with its bid collection.
func (q *AuctionQueries) GetItem(ctx context.Context, id uuid.UUID) (*domain.AuctionItem, error) {
	item, err := q.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("queries: failed to load auction item %s: %w", id, err)
	}
	bids, err := q.bidRepo.ListByItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to load bids for item %s: %w", id, err)
	}
	if bids == nil {
		bids = []*domain.Bid{}
	}
	item.Bids = bids
	return item, nil
}

// GetBidsByItem returns all bids for an item with bidder relations populated.
func (q *AuctionQueries) GetBidsByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Bid, error) {
	if _, err := q.itemRepo.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("queries: failed to load auction item %s: %w", itemID, err)
	}
	bids, err := q.bidRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to load bids for item %s: %w", itemID, err)
	}
	if bids == nil {
		bids = []*domain.Bid{}
	}
	return bids, nil
}

// GetBidsByBidder returns all bids placed by a user.
func (q *AuctionQueries) GetBidsByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	bids, err := q.bidRepo.ListByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("queries: failed to load bids for bidder %s: %w", bidderID, err)
	}
	if bids == nil {
		bids = []*domain.Bid{}
	}
	return bids, nil
}
