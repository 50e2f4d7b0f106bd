package server

import (
	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user profile
// @Tags users
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var user models.User
	err := cache.Aside(c.UserContext(), cache.UserKey(userID), &user, cache.UserTTL, func() error {
		u, fetchErr := s.userService.GetProfile(c.UserContext(), userID, userID)
		if fetchErr != nil {
			return fetchErr
		}
		user = *u
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Omitted fields are unchanged.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name     *string `json:"name"`
		Bio      *string `json:"bio"`
		Headline *string `json:"headline"`
		Location *string `json:"location"`
		Image    *string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   userID,
		Name:     req.Name,
		Bio:      req.Bio,
		Headline: req.Headline,
		Location: req.Location,
		Image:    req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	cache.InvalidateUser(c.UserContext(), userID)
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 10)

	users, err := s.userService.SearchUsers(c.UserContext(), c.Query("q"), page.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
