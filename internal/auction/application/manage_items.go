package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
)

// CreateItemDTO carries the fields for posting a new auction item. OwnerID
// is the already-resolved identity of the caller.
type CreateItemDTO struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	StartPrice  int64
	EndDate     time.Time
}

// UpdateItemDTO carries an owner-scoped item mutation.
type UpdateItemDTO struct {
	ItemID      uuid.UUID
	RequesterID uuid.UUID
	Title       string
	Description string
	Image       string
	StartPrice  int64
	EndDate     time.Time
}

// ManageItemsUseCase covers the owner-scoped item mutations: create, update,
// delete and image updates.
type ManageItemsUseCase struct {
	itemRepo domain.AuctionItemRepository
	bidRepo  domain.BidRepository
}

func NewManageItemsUseCase(itemRepo domain.AuctionItemRepository, bidRepo domain.BidRepository) *ManageItemsUseCase {
	return &ManageItemsUseCase{itemRepo: itemRepo, bidRepo: bidRepo}
}

func (uc *ManageItemsUseCase) Create(ctx context.Context, cmd CreateItemDTO) (*domain.AuctionItem, error) {
	item, err := domain.NewAuctionItem(
		uuid.New(),
		cmd.OwnerID,
		cmd.Title,
		cmd.Description,
		cmd.StartPrice,
		cmd.EndDate,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("manage items: failed to create auction item: %w", err)
	}
	log.Info("Auction item created",
		zap.String("itemID", item.ID.String()),
		zap.String("ownerID", item.OwnerID.String()),
		zap.Time("endDate", item.EndDate),
	)
	return item, nil
}

// Update applies an owner-scoped mutation. Price and end date are frozen as
// soon as the item has any bid.
func (uc *ManageItemsUseCase) Update(ctx context.Context, cmd UpdateItemDTO) (*domain.AuctionItem, error) {
	item, err := uc.loadOwned(ctx, cmd.ItemID, cmd.RequesterID)
	if err != nil {
		return nil, err
	}

	bids, err := uc.bidRepo.ListByItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, fmt.Errorf("manage items: failed to load bids for item %s: %w", cmd.ItemID, err)
	}

	upd := domain.ItemUpdate{
		Title:       cmd.Title,
		Description: cmd.Description,
		Image:       cmd.Image,
		StartPrice:  cmd.StartPrice,
		EndDate:     cmd.EndDate,
	}
	if err := item.ApplyUpdate(upd, len(bids) > 0, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("manage items: failed to update auction item %s: %w", cmd.ItemID, err)
	}
	return item, nil
}

// Delete removes an item; its bids cascade at the storage layer.
func (uc *ManageItemsUseCase) Delete(ctx context.Context, itemID, requesterID uuid.UUID) error {
	if _, err := uc.loadOwned(ctx, itemID, requesterID); err != nil {
		return err
	}
	if err := uc.itemRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("manage items: failed to delete auction item %s: %w", itemID, err)
	}
	log.Info("Auction item deleted", zap.String("itemID", itemID.String()))
	return nil
}

// UpdateImage stores a new image reference for the item. The file itself is
// handled by the storage collaborator before this is called.
func (uc *ManageItemsUseCase) UpdateImage(ctx context.Context, itemID uuid.UUID, image string) (*domain.AuctionItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("manage items: failed to load auction item %s: %w", itemID, err)
	}
	item.Image = image
	item.UpdatedAt = time.Now().UTC()
	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("manage items: failed to update image for item %s: %w", itemID, err)
	}
	return item, nil
}

func (uc *ManageItemsUseCase) loadOwned(ctx context.Context, itemID, requesterID uuid.UUID) (*domain.AuctionItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("manage items: failed to load auction item %s: %w", itemID, err)
	}
	if item.OwnerID != requesterID {
		return nil, domain.ErrNotOwner
	}
	return item, nil
}
