package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/validation"
)

// DepartmentsHandler exposes the department registry.
type DepartmentsHandler struct {
	service   *service.DepartmentService
	validator *validation.Validator
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService, validator *validation.Validator) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService, validator: validator}
}

// Create POST /api/departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	dept, err := h.service.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// List GET /api/departments?search=.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	depts, err := h.service.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		items = append(items, dto.NewDepartmentResponse(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	dept, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// Update PUT /api/departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	var req dto.UpdateDepartmentRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	dept, err := h.service.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// Delete DELETE /api/departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "Department deleted successfully"}})
}

// Stats GET /api/departments/:id/stats.
func (h *DepartmentsHandler) Stats(c *fiber.Ctx) error {
	id, err := idParam(c, h.validator)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentStatsResponse(stats)})
}
