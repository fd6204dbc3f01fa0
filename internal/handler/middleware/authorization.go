package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/service"
)

// RequirePermission verifies that the authenticated principal holds the
// given capability. Admins and tenant owners always pass; employees are
// resolved through their role. Denials land in the audit trail.
func RequirePermission(roleService *service.RoleService, audit *service.AuditService, perm domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		allowed, err := roleService.Has(c.Context(), principal, perm)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to check permission",
			})
		}
		if !allowed {
			recordDenial(c, audit, principal, "permission denied: "+string(perm))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":               "insufficient permissions",
				"required_permission": perm,
			})
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to platform administrators.
func RequireAdmin(audit *service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if principal.Kind != domain.KindAdmin {
			recordDenial(c, audit, principal, "admin-only route refused")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}

// RequireTenant restricts a route to tenant-scoped principals (owners
// and employees). Admins have their own tenant-agnostic endpoints.
func RequireTenant(audit *service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if principal.TenantID == nil {
			recordDenial(c, audit, principal, "tenant-only route refused")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "tenant account required",
			})
		}
		return c.Next()
	}
}

// RequireOwner restricts a route to the tenant owner account.
func RequireOwner(audit *service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if principal.Kind != domain.KindTenantOwner {
			recordDenial(c, audit, principal, "owner-only route refused")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "owner access required",
			})
		}
		return c.Next()
	}
}

func recordDenial(c *fiber.Ctx, audit *service.AuditService, principal *domain.Principal, message string) {
	audit.Record(c.Context(), domain.AuditEvent{
		Level:     domain.AuditWarning,
		Category:  domain.AuditCategoryAuthz,
		Message:   message,
		UserID:    &principal.ID,
		UserEmail: principal.Email,
		TenantID:  principal.TenantID,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
		Metadata:  map[string]string{"path": c.Path()},
	})
}
