package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
)

// AuctionService is the application interface of the auction module, the
// surface the transport layers (HTTP, websocket) talk to.
type AuctionService interface {
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	GetBidsByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Bid, error)
	GetBidsByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error)

	ListAll(ctx context.Context, page int) (*PaginatedItems, error)
	ListEverything(ctx context.Context) ([]*domain.AuctionItem, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.AuctionItem, error)
	ListBidded(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error)
	ListWon(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error)
	ListWinning(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*domain.AuctionItem, error)

	CreateItem(ctx context.Context, cmd CreateItemDTO) (*domain.AuctionItem, error)
	UpdateItem(ctx context.Context, cmd UpdateItemDTO) (*domain.AuctionItem, error)
	DeleteItem(ctx context.Context, itemID, requesterID uuid.UUID) error
	UpdateItemImage(ctx context.Context, itemID uuid.UUID, image string) (*domain.AuctionItem, error)
}

type auctionService struct {
	placeBid *PlaceBidUseCase
	queries  *AuctionQueries
	manage   *ManageItemsUseCase
}

func NewAuctionService(placeBid *PlaceBidUseCase, queries *AuctionQueries, manage *ManageItemsUseCase) AuctionService {
	return &auctionService{
		placeBid: placeBid,
		queries:  queries,
		manage:   manage,
	}
}

func (s *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return s.placeBid.Execute(ctx, cmd)
}

func (s *auctionService) GetBidsByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Bid, error) {
	return s.queries.GetBidsByItem(ctx, itemID)
}

func (s *auctionService) GetBidsByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	return s.queries.GetBidsByBidder(ctx, bidderID)
}

func (s *auctionService) ListAll(ctx context.Context, page int) (*PaginatedItems, error) {
	return s.queries.ListAll(ctx, page)
}

func (s *auctionService) ListEverything(ctx context.Context) ([]*domain.AuctionItem, error) {
	return s.queries.ListEverything(ctx)
}

func (s *auctionService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.AuctionItem, error) {
	return s.queries.ListByOwner(ctx, ownerID)
}

func (s *auctionService) ListBidded(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	return s.queries.ListBidded(ctx, userID)
}

func (s *auctionService) ListWon(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	return s.queries.ListWon(ctx, userID)
}

func (s *auctionService) ListWinning(ctx context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	return s.queries.ListWinning(ctx, userID)
}

func (s *auctionService) GetItem(ctx context.Context, id uuid.UUID) (*domain.AuctionItem, error) {
	return s.queries.GetItem(ctx, id)
}

func (s *auctionService) CreateItem(ctx context.Context, cmd CreateItemDTO) (*domain.AuctionItem, error) {
	return s.manage.Create(ctx, cmd)
}

func (s *auctionService) UpdateItem(ctx context.Context, cmd UpdateItemDTO) (*domain.AuctionItem, error) {
	return s.manage.Update(ctx, cmd)
}

func (s *auctionService) DeleteItem(ctx context.Context, itemID, requesterID uuid.UUID) error {
	return s.manage.Delete(ctx, itemID, requesterID)
}

func (s *auctionService) UpdateItemImage(ctx context.Context, itemID uuid.UUID, image string) (*domain.AuctionItem, error) {
	return s.manage.UpdateImage(ctx, itemID, image)
}
