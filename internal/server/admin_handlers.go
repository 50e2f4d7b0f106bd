package server

import (
	"encoding/json"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/moderation"

	"github.com/gofiber/fiber/v2"
)

// resolveReportRequest is the body of PATCH /api/admin/reported-content/:id.
type resolveReportRequest struct {
	Action string `json:"action"`
}

// resolveReportResponse confirms an admin decision.
type resolveReportResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Outcome moderation.Outcome `json:"outcome"`
}

// GetReportedContent handles GET /api/admin/reported-content
// @Summary Moderation queue
// @Description Reported posts with their PENDING reports aggregated, most recently reported first.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReportQueueEntry
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/reported-content [get]
func (s *Server) GetReportedContent(c *fiber.Ctx) error {
	actor, err := s.moderationActor(c)
	if err != nil {
		return respondError(c, err)
	}

	queue, err := s.moderationService.ReportedContent(c.UserContext(), actor)
	if err != nil {
		return respondModerationError(c, err)
	}
	return c.JSON(queue)
}

// ResolveReport handles PATCH /api/admin/reported-content/:id
// @Summary Resolve a report
// @Description Approve (remove the post) or reject a report. An empty body approves.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body resolveReportRequest false "Decision"
// @Success 200 {object} resolveReportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/reported-content/{id} [patch]
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req resolveReportRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	action, err := moderation.ParseAction(req.Action)
	if err != nil {
		return respondModerationError(c, err)
	}

	actor, err := s.moderationActor(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.moderationService.ResolveReport(c.UserContext(), actor, reportID, action)
	if err != nil {
		return respondModerationError(c, err)
	}

	return c.JSON(resolveReportResponse{
		Success: true,
		Message: res.Outcome.Message(),
		Outcome: res.Outcome,
	})
}

// GetDashboardStats handles GET /api/admin/dashboard-stats
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Router /admin/dashboard-stats [get]
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.dashboardService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetAdminUsers handles GET /api/admin/users
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetAdmins handles GET /api/admin/admins
func (s *Server) GetAdmins(c *fiber.Ctx) error {
	admins, err := s.userService.ListAdmins(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(admins)
}

// ToggleUserBan handles POST /api/admin/users/:id/ban
func (s *Server) ToggleUserBan(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.ToggleBan(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	cache.InvalidateUser(c.UserContext(), targetID)
	return c.JSON(user)
}

// PromoteUser handles POST /api/admin/users/:id/promote
func (s *Server) PromoteUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.Promote(c.UserContext(), targetID)
	if err != nil {
		return respondError(c, err)
	}
	cache.InvalidateUser(c.UserContext(), targetID)
	return c.JSON(user)
}

// DemoteUser handles POST /api/admin/users/:id/demote
func (s *Server) DemoteUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.Demote(c.UserContext(), targetID)
	if err != nil {
		return respondError(c, err)
	}
	cache.InvalidateUser(c.UserContext(), targetID)
	return c.JSON(user)
}
