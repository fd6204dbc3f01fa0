package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/service"
)

// serviceError maps service-layer failures to HTTP responses. Handlers
// funnel every non-nil service error through here so the status mapping
// stays in one place.
func serviceError(c *fiber.Ctx, err error) error {
	var subErr *service.SubscriptionError
	var conflictErr *service.RoleConflictError
	var validationErr *service.ValidationError
	var limitErr *service.PlanLimitError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid credentials",
		})
	case errors.As(err, &subErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": subErr.Reason,
		})
	case errors.As(err, &limitErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": limitErr.Error(),
		})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": conflictErr.Error(),
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
		})
	case errors.Is(err, service.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "email already registered",
		})
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrTenantNotFound),
		errors.Is(err, service.ErrEmployeeNotFound),
		errors.Is(err, service.ErrLocationNotFound),
		errors.Is(err, service.ErrRoleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// parseUUIDParam reads a path parameter as a UUID.
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.New("invalid " + name)
	}
	return id, nil
}

// requestMeta collects the connection attributes for audit records.
func requestMeta(c *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}
