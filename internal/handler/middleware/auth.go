package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/service"
	"github.com/fixdesk/servicedesk/pkg/jwt"
)

// Locals keys populated by AuthMiddleware for downstream handlers.
const (
	LocalPrincipal = "principal"
	LocalClaims    = "claims"
	LocalTenant    = "tenant"
)

// AuthMiddleware is the access gate in front of every protected route.
// It validates the bearer token and, for tenant-scoped principals,
// re-evaluates the tenant's subscription on every request: a token
// issued while the tenant was healthy stops working the moment the
// tenant is suspended, cancelled, or expires without grace. Platform
// admins skip the subscription check. Subscription rejections are
// recorded in the audit trail.
func AuthMiddleware(tokenService *jwt.TokenService, tenantService *service.TenantService, subscriptionService *service.SubscriptionService, audit *service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization header",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid authorization header format",
			})
		}

		claims, err := tokenService.Decode(parts[1])
		if err != nil {
			msg := "invalid token"
			if err == jwt.ErrTokenExpired {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": msg,
			})
		}

		principal := claims.Principal()

		if principal.TenantID != nil {
			tenant, err := tenantService.Get(c.Context(), *principal.TenantID)
			if err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "service no longer exists",
				})
			}
			decision := subscriptionService.Evaluate(tenant, time.Now().UTC())
			if !decision.Allowed {
				audit.Record(c.Context(), domain.AuditEvent{
					Level:     domain.AuditWarning,
					Category:  domain.AuditCategoryAuthz,
					Message:   "request blocked by subscription state: " + decision.Reason,
					UserID:    &principal.ID,
					UserEmail: principal.Email,
					TenantID:  principal.TenantID,
					IPAddress: c.IP(),
					UserAgent: c.Get("User-Agent"),
				})
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": decision.Reason,
				})
			}
			c.Locals(LocalTenant, tenant)
		}

		c.Locals(LocalPrincipal, principal)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// PrincipalFrom returns the authenticated principal stored by
// AuthMiddleware, or nil on an unprotected route.
func PrincipalFrom(c *fiber.Ctx) *domain.Principal {
	p, _ := c.Locals(LocalPrincipal).(*domain.Principal)
	return p
}

// TenantFrom returns the gate-loaded tenant for tenant-scoped
// principals, nil for admins.
func TenantFrom(c *fiber.Ctx) *domain.Tenant {
	t, _ := c.Locals(LocalTenant).(*domain.Tenant)
	return t
}
