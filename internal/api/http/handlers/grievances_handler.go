package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/validation"
)

// GrievancesHandler exposes the grievance ledger.
type GrievancesHandler struct {
	service   *service.GrievanceService
	policy    *auth.Policy
	validator *validation.Validator
}

// NewGrievancesHandler constructs handler.
func NewGrievancesHandler(grievanceService *service.GrievanceService, policy *auth.Policy, validator *validation.Validator) *GrievancesHandler {
	return &GrievancesHandler{service: grievanceService, policy: policy, validator: validator}
}

// Create POST /api/grievances.
func (h *GrievancesHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateGrievanceRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	grievance, err := h.service.Create(c.UserContext(), actorFor(principal, h.policy), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewGrievanceResponse(grievance)})
}

// List GET /api/grievances.
func (h *GrievancesHandler) List(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var query dto.GrievanceListQuery
	if err := bindQuery(c, h.validator, &query); err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), actorFor(principal, h.policy), query.ToFilter())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGrievancePageResponse(page)})
}

// Get GET /api/grievances/:id.
func (h *GrievancesHandler) Get(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	grievance, err := h.service.Get(c.UserContext(), actorFor(principal, h.policy), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGrievanceResponse(grievance)})
}

// UpdateStatus PATCH /api/grievances/:id/status.
func (h *GrievancesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	grievance, err := h.service.Transition(c.UserContext(), actorFor(principal, h.policy), id, domain.GrievanceStatus(req.Status), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGrievanceResponse(grievance)})
}

// AddComment POST /api/grievances/:id/comments.
func (h *GrievancesHandler) AddComment(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	grievance, err := h.service.AddComment(c.UserContext(), actorFor(principal, h.policy), id, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewGrievanceResponse(grievance)})
}

// Assign POST /api/grievances/:id/assign.
func (h *GrievancesHandler) Assign(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	grievance, err := h.service.Assign(c.UserContext(), actorFor(principal, h.policy), id, req.UserID, req.UserName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGrievanceResponse(grievance)})
}
