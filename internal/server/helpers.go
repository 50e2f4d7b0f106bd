package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/moderation"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize    = 20
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label:
// "id" -> "ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		var words []string
		prefix := param[:len(param)-2]
		start := 0
		for i, r := range prefix {
			if i > 0 && unicode.IsUpper(r) {
				words = append(words, prefix[start:i])
				start = i
			}
		}
		words = append(words, prefix[start:])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// currentUserID returns the authenticated user id stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// respondError writes err with the status its AppError code implies.
// Anything that is not an AppError is logged, reported and hidden behind a 500.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		reportServerError(c, err)
	}
	return models.RespondWithError(c, status, err)
}

// respondModerationError maps moderation sentinels onto HTTP statuses.
func respondModerationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, moderation.ErrForbidden):
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin access required"))
	case errors.Is(err, moderation.ErrReportNotFound):
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Report", c.Params("id")))
	case errors.Is(err, moderation.ErrInvalidAction):
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid action. Must be 'approve' or 'reject'"))
	default:
		return respondError(c, err)
	}
}

func reportServerError(c *fiber.Ctx, err error) {
	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(), "path", c.Path(), "error", err)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

// isAdminByUserID adapts the user service to the isAdmin hook services expect.
func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	return s.userService.IsAdmin(ctx, userID)
}

// moderationActor builds the capability handed to the moderation core from
// the authenticated request.
func (s *Server) moderationActor(c *fiber.Ctx) (moderation.Actor, error) {
	userID := currentUserID(c)
	admin, err := s.isAdminByUserID(c.UserContext(), userID)
	if err != nil {
		return moderation.Actor{}, err
	}
	return moderation.Actor{UserID: userID, IsAdmin: admin}, nil
}
