package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/handler/middleware"
	"github.com/fixdesk/servicedesk/internal/service"
	"github.com/fixdesk/servicedesk/pkg/validator"
)

type RoleHandler struct {
	roleService *service.RoleService
	validator   *validator.Validator
}

func NewRoleHandler(roleService *service.RoleService, validator *validator.Validator) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		validator:   validator,
	}
}

// ListRoles returns the tenant's role catalog with user counts
// GET /api/tenant/roles
func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	roles, err := h.roleService.ListRoles(c.Context(), *principal.TenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"roles": roles,
	})
}

// CreateRole adds a custom role
// POST /api/tenant/roles
func (h *RoleHandler) CreateRole(c *fiber.Ctx) error {
	var req service.CreateRoleRequest
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
	role, err := h.roleService.CreateRole(c.Context(), *principal.TenantID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// UpdateRole replaces a custom role's definition
// PUT /api/tenant/roles/:roleId
func (h *RoleHandler) UpdateRole(c *fiber.Ctx) error {
	var req service.UpdateRoleRequest
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
	role, err := h.roleService.UpdateRole(c.Context(), *principal.TenantID, c.Params("roleId"), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(role)
}

// DeleteRole removes an unused custom role
// DELETE /api/tenant/roles/:roleId
func (h *RoleHandler) DeleteRole(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if err := h.roleService.DeleteRole(c.Context(), *principal.TenantID, c.Params("roleId")); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Role deleted",
	})
}

// ListPermissions returns the closed permission catalog grouped by domain
// GET /api/tenant/permissions
func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"groups": domain.PermissionGroups(),
	})
}

// MyPermissions returns the caller's resolved permission set
// GET /api/tenant/my-permissions
func (h *RoleHandler) MyPermissions(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	set, err := h.roleService.CapabilitiesOf(c.Context(), principal)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"permissions": set.List(),
	})
}
