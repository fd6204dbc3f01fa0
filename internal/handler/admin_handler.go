package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
	"github.com/fixdesk/servicedesk/internal/service"
	"github.com/fixdesk/servicedesk/pkg/validator"
)

// AdminHandler exposes the platform-operator surface: tenant approval,
// subscription overrides and the audit log. Every route behind it is
// gated by RequireAdmin.
type AdminHandler struct {
	tenantService       *service.TenantService
	subscriptionService *service.SubscriptionService
	auditService        *service.AuditService
	validator           *validator.Validator
	defaultGraceDays    int
}

func NewAdminHandler(
	tenantService *service.TenantService,
	subscriptionService *service.SubscriptionService,
	auditService *service.AuditService,
	validator *validator.Validator,
	defaultGraceDays int,
) *AdminHandler {
	return &AdminHandler{
		tenantService:       tenantService,
		subscriptionService: subscriptionService,
		auditService:        auditService,
		validator:           validator,
		defaultGraceDays:    defaultGraceDays,
	}
}

// PendingServices lists tenants awaiting approval
// GET /api/admin/pending-services
func (h *AdminHandler) PendingServices(c *fiber.Ctx) error {
	tenants, err := h.tenantService.ListByStatus(c.Context(), string(domain.SubscriptionPending))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"services": tenants,
	})
}

// ActivateService approves a pending tenant
// POST /api/admin/activate-service/:tenantId
func (h *AdminHandler) ActivateService(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req struct {
		Price float64 `json:"price" validate:"gte=0"`
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

	if err := h.subscriptionService.Activate(c.Context(), tenantID, req.Price); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Service activated",
	})
}

// ToggleTenantStatus flips a tenant between active and suspended
// POST /api/admin/toggle-tenant-status/:tenantId
func (h *AdminHandler) ToggleTenantStatus(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tenant, err := h.tenantService.Get(c.Context(), tenantID)
	if err != nil {
		return serviceError(c, err)
	}

	next := domain.SubscriptionSuspended
	if tenant.SubscriptionStatus == domain.SubscriptionSuspended {
		next = domain.SubscriptionActive
	}
	if err := h.subscriptionService.SetStatus(c.Context(), tenantID, string(next)); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subscription_status": next,
	})
}

// ExtendGracePeriod grants extra days past the current cutoff. Omitting
// days falls back to the configured default.
// POST /api/admin/extend-grace-period/:tenantId
func (h *AdminHandler) ExtendGracePeriod(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req struct {
		Days int `json:"days" validate:"omitempty,gte=1,lte=90"`
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
	if req.Days == 0 {
		req.Days = h.defaultGraceDays
	}

	newEnd, err := h.subscriptionService.ExtendGrace(c.Context(), tenantID, req.Days)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"new_end_date": newEnd,
	})
}

// ResetSubscription restarts coverage from now after an out-of-band payment
// POST /api/admin/reset-subscription/:tenantId
func (h *AdminHandler) ResetSubscription(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req struct {
		Months int `json:"months" validate:"required,gte=1,lte=24"`
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

	newEnd, err := h.subscriptionService.ResetSubscription(c.Context(), tenantID, req.Months)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"new_end_date": newEnd,
	})
}

// UpdateSubscriptionEndDate overwrites a tenant's end date
// POST /api/admin/update-subscription-end-date/:tenantId
func (h *AdminHandler) UpdateSubscriptionEndDate(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req struct {
		EndDate time.Time `json:"end_date" validate:"required"`
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

	if err := h.subscriptionService.SetEndDate(c.Context(), tenantID, req.EndDate); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Subscription end date updated",
	})
}

// TenantsExpiringSoon lists active tenants inside the warning window
// GET /api/admin/tenants-expiring-soon
func (h *AdminHandler) TenantsExpiringSoon(c *fiber.Ctx) error {
	tenants, err := h.subscriptionService.ExpiringSoon(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tenants": tenants,
	})
}

// SendPaymentNotification flags a tenant and emails its owner
// POST /api/admin/send-payment-notification/:tenantId
func (h *AdminHandler) SendPaymentNotification(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := h.subscriptionService.SendPaymentNotice(c.Context(), tenantID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Payment notification sent",
	})
}

// DismissPaymentNotification clears a tenant's payment notice
// POST /api/admin/dismiss-payment-notification/:tenantId
func (h *AdminHandler) DismissPaymentNotification(c *fiber.Ctx) error {
	tenantID, err := parseUUIDParam(c, "tenantId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := h.subscriptionService.DismissPaymentNotice(c.Context(), tenantID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Payment notification dismissed",
	})
}

// Logs returns the audit trail, newest first
// GET /api/admin/logs
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	filter := repository.AuditFilter{
		Level:    c.Query("level"),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", 100),
	}
	if raw := c.Query("tenant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid tenant_id",
			})
		}
		filter.TenantID = &id
	}

	events, err := h.auditService.List(c.Context(), filter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"logs": events,
	})
}
