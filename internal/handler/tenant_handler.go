package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/handler/middleware"
	"github.com/fixdesk/servicedesk/internal/service"
	"github.com/fixdesk/servicedesk/pkg/validator"
)

// TenantHandler exposes the tenant-scoped staff and location directory.
type TenantHandler struct {
	tenantService *service.TenantService
	validator     *validator.Validator
}

func NewTenantHandler(tenantService *service.TenantService, validator *validator.Validator) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		validator:     validator,
	}
}

// ListEmployees returns the tenant's staff directory
// GET /api/tenant/employees
func (h *TenantHandler) ListEmployees(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	employees, err := h.tenantService.ListEmployees(c.Context(), *principal.TenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"employees": employees,
	})
}

// CreateEmployee adds a staff account
// POST /api/tenant/employees
func (h *TenantHandler) CreateEmployee(c *fiber.Ctx) error {
	var req service.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	principal := middleware.PrincipalFrom(c)
	employee, err := h.tenantService.CreateEmployee(c.Context(), *principal.TenantID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(employee)
}

// UpdateEmployeeRole reassigns an employee's role
// PUT /api/tenant/employees/:userId/role
func (h *TenantHandler) UpdateEmployeeRole(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req struct {
		Role string `json:"role" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	principal := middleware.PrincipalFrom(c)
	if err := h.tenantService.UpdateEmployeeRole(c.Context(), *principal.TenantID, userID, req.Role); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Employee role updated",
	})
}

// UpdateEmployeeLocation moves an employee to another location
// PUT /api/tenant/employees/:userId/location
func (h *TenantHandler) UpdateEmployeeLocation(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req struct {
		LocationID uuid.UUID `json:"location_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	principal := middleware.PrincipalFrom(c)
	if err := h.tenantService.UpdateEmployeeLocation(c.Context(), *principal.TenantID, userID, req.LocationID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Employee location updated",
	})
}

// DeleteEmployee removes a staff account
// DELETE /api/tenant/employees/:userId
func (h *TenantHandler) DeleteEmployee(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	principal := middleware.PrincipalFrom(c)
	if err := h.tenantService.DeleteEmployee(c.Context(), *principal.TenantID, userID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Employee deleted",
	})
}

// ListLocations returns the tenant's locations
// GET /api/tenant/locations
func (h *TenantHandler) ListLocations(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	locations, err := h.tenantService.ListLocations(c.Context(), *principal.TenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"locations": locations,
	})
}

// CreateLocation adds a service location
// POST /api/tenant/locations
func (h *TenantHandler) CreateLocation(c *fiber.Ctx) error {
	var req service.CreateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	principal := middleware.PrincipalFrom(c)
	location, err := h.tenantService.CreateLocation(c.Context(), *principal.TenantID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(location)
}
