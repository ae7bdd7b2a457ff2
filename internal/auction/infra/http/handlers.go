package http

import (
	"context"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/auction/application"
	wsfeed "github.com/mpusnik/auctionhub/internal/auction/infra/websocket"
	"github.com/mpusnik/auctionhub/internal/shared/logger"
	sharedvalidator "github.com/mpusnik/auctionhub/internal/shared/validator"
)

var log = logger.GetLogger()

// ImageStore is the storage collaborator the upload endpoint hands files to.
// Implemented by storage.ImageStore.
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

// Handler carries the fiber handlers of the auction module.
type Handler struct {
	svc      application.AuctionService
	images   ImageStore
	validate *validator.Validate
}

func NewHandler(svc application.AuctionService, images ImageStore) *Handler {
	return &Handler{
		svc:      svc,
		images:   images,
		validate: sharedvalidator.GetValidator(),
	}
}

// RegisterRoutes wires the REST and websocket surface. The owner listing
// (`/auctions/:userId`) must stay registered last in its group so the more
// specific paths win.
func (h *Handler) RegisterRoutes(ctx context.Context, app *fiber.App, feed *wsfeed.AuctionFeed) {
	bids := app.Group("/bids")
	bids.Post("/:auctionItemId", h.PlaceBid)
	bids.Get("/bidder/:bidderId", h.GetBidsByBidder)
	bids.Get("/:auctionItemId", h.GetBidsByItem)

	auctions := app.Group("/auctions")
	auctions.Get("/", h.ListAll)
	auctions.Get("/all", h.ListEverything)
	auctions.Get("/auction/:id", h.GetItem)
	auctions.Get("/bidded/:userId", h.ListBidded)
	auctions.Get("/won/:userId", h.ListWon)
	auctions.Get("/winning/:userId", h.ListWinning)
	auctions.Post("/", h.CreateItem)
	auctions.Post("/upload/:id", h.Upload)
	auctions.Patch("/:id", h.UpdateItem)
	auctions.Delete("/:id", h.DeleteItem)
	auctions.Get("/:userId", h.ListByOwner)

	if feed != nil {
		app.Get("/ws/auctions/:id", wsfeed.UpgradeMiddleware(), feed.SubscribeHandler(ctx))
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// requesterID resolves the caller identity from the X-User-Id header, set by
// the auth collaborator in front of this service.
func requesterID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Get("X-User-Id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing or invalid X-User-Id header")
	}
	return id, nil
}

// PlaceBid handles POST /bids/:auctionItemId.
func (h *Handler) PlaceBid(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "auctionItemId")
	if err != nil {
		return err
	}

	var req PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	bidderID, err := uuid.Parse(req.BidderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid bidder_id")
	}

	bid, err := h.svc.PlaceBid(c.Context(), application.PlaceBidDTO{
		ItemID:   itemID,
		BidderID: bidderID,
		Amount:   req.BidAmount,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

// GetBidsByItem handles GET /bids/:auctionItemId.
func (h *Handler) GetBidsByItem(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "auctionItemId")
	if err != nil {
		return err
	}
	bids, err := h.svc.GetBidsByItem(c.Context(), itemID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(bids)
}

// GetBidsByBidder handles GET /bids/bidder/:bidderId.
func (h *Handler) GetBidsByBidder(c *fiber.Ctx) error {
	bidderID, err := parseUUIDParam(c, "bidderId")
	if err != nil {
		return err
	}
	log.Info("Fetching bids for bidder", zap.String("bidderID", bidderID.String()))
	bids, err := h.svc.GetBidsByBidder(c.Context(), bidderID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(bids)
}

// ListAll handles GET /auctions?page=.
func (h *Handler) ListAll(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	result, err := h.svc.ListAll(c.Context(), page)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(result)
}

// ListEverything handles GET /auctions/all.
func (h *Handler) ListEverything(c *fiber.Ctx) error {
	items, err := h.svc.ListEverything(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// GetItem handles GET /auctions/auction/:id.
func (h *Handler) GetItem(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.GetItem(c.Context(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(item)
}

// ListByOwner handles GET /auctions/:userId.
func (h *Handler) ListByOwner(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByOwner(c.Context(), userID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// ListBidded handles GET /auctions/bidded/:userId.
func (h *Handler) ListBidded(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListBidded(c.Context(), userID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// ListWon handles GET /auctions/won/:userId.
func (h *Handler) ListWon(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListWon(c.Context(), userID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// ListWinning handles GET /auctions/winning/:userId.
func (h *Handler) ListWinning(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListWinning(c.Context(), userID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// CreateItem handles POST /auctions.
func (h *Handler) CreateItem(c *fiber.Ctx) error {
	ownerID, err := requesterID(c)
	if err != nil {
		return err
	}

	var req CreateUpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := h.svc.CreateItem(c.Context(), application.CreateItemDTO{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		StartPrice:  req.StartPrice,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem handles PATCH /auctions/:id.
func (h *Handler) UpdateItem(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	reqID, err := requesterID(c)
	if err != nil {
		return err
	}

	var req CreateUpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := h.svc.UpdateItem(c.Context(), application.UpdateItemDTO{
		ItemID:      itemID,
		RequesterID: reqID,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		StartPrice:  req.StartPrice,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(item)
}

// DeleteItem handles DELETE /auctions/:id.
func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	reqID, err := requesterID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteItem(c.Context(), itemID, reqID); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Upload handles POST /auctions/upload/:id.
func (h *Handler) Upload(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing image file")
	}

	name, err := h.images.Save(file)
	if err != nil {
		return sendError(c, err)
	}

	item, err := h.svc.UpdateItemImage(c.Context(), itemID, name)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}
