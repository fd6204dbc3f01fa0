package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/servicedesk/internal/handler/middleware"
	"github.com/fixdesk/servicedesk/internal/service"
	"github.com/fixdesk/servicedesk/pkg/validator"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	validator           *validator.Validator
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService, validator *validator.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		validator:           validator,
	}
}

// Status returns the caller tenant's subscription view
// GET /api/tenant/subscription-status
func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	resp, err := h.subscriptionService.Status(c.Context(), *principal.TenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ProcessPayment credits months of coverage on a plan
// POST /api/tenant/process-payment
func (h *SubscriptionHandler) ProcessPayment(c *fiber.Ctx) error {
	var req struct {
		Plan   string `json:"plan" validate:"required"`
		Months int    `json:"months" validate:"required,gte=1,lte=24"`
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
	receipt, err := h.subscriptionService.ApplyPayment(c.Context(), *principal.TenantID, req.Plan, req.Months)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(receipt)
}

// PaymentHistory lists the caller tenant's payments, newest first
// GET /api/tenant/payment-history
func (h *SubscriptionHandler) PaymentHistory(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	payments, err := h.subscriptionService.PaymentHistory(c.Context(), *principal.TenantID, c.QueryInt("limit", 20))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"payments": payments,
	})
}

// DismissPaymentAlert clears the caller tenant's payment notice
// POST /api/tenant/dismiss-payment-alert
func (h *SubscriptionHandler) DismissPaymentAlert(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if err := h.subscriptionService.DismissPaymentNotice(c.Context(), *principal.TenantID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Payment alert dismissed",
	})
}
