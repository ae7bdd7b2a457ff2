package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	"github.com/mpusnik/auctionhub/internal/auction/infra/storage"
	userdomain "github.com/mpusnik/auctionhub/internal/user/domain"
)

// statusFromError maps domain errors onto the HTTP taxonomy: missing
// references are 404, malformed input 400, closed/frozen conflicts 409,
// ownership violations 403 and everything else a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrBidderNotFound),
		errors.Is(err, userdomain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBidBelowStartPrice),
		errors.Is(err, domain.ErrEndDateInPast),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrNegativeStartPrice),
		errors.Is(err, storage.ErrUnsafeContent):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAuctionClosed),
		errors.Is(err, domain.ErrItemFrozen):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNotOwner):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		// do not leak storage details to clients
		msg = "something went wrong"
	}
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}
