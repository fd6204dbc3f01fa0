package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/servicedesk/internal/handler/middleware"
	"github.com/fixdesk/servicedesk/internal/service"
	"github.com/fixdesk/servicedesk/pkg/validator"
)

type AuthHandler struct {
	authService   *service.AuthService
	tenantService *service.TenantService
	validator     *validator.Validator
}

func NewAuthHandler(authService *service.AuthService, tenantService *service.TenantService, validator *validator.Validator) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		tenantService: tenantService,
		validator:     validator,
	}
}

// RegisterService handles tenant self-registration
// POST /api/auth/register-service
func (h *AuthHandler) RegisterService(c *fiber.Ctx) error {
	var req service.RegisterRequest
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

	tenant, err := h.tenantService.Register(c.Context(), req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"tenant_id": tenant.TenantID,
		"message":   "Registration received. Your service is awaiting approval.",
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
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

	resp, err := h.authService.Login(c.Context(), req, requestMeta(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Me returns the authenticated principal's identity
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	resp := fiber.Map{
		"user_id":   principal.ID,
		"user_type": principal.Kind,
		"name":      principal.DisplayName,
		"email":     principal.Email,
	}
	if principal.TenantID != nil {
		resp["tenant_id"] = principal.TenantID
	}
	if principal.Role != "" {
		resp["role"] = principal.Role
	}
	if principal.LocationID != nil {
		resp["location_id"] = principal.LocationID
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
