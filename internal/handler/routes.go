package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/handler/middleware"
	"github.com/fixdesk/servicedesk/internal/service"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	roleHandler *RoleHandler,
	subscriptionHandler *SubscriptionHandler,
	adminHandler *AdminHandler,
	tenantHandler *TenantHandler,
	healthHandler *HealthHandler,
	authMiddleware fiber.Handler,
	roleService *service.RoleService,
	auditService *service.AuditService,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register-service", authHandler.RegisterService)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", authMiddleware, authHandler.Me)

	// Tenant-scoped routes (owner and staff)
	tenant := api.Group("/tenant", authMiddleware, middleware.RequireTenant(auditService))

	tenant.Get("/my-permissions", roleHandler.MyPermissions)
	tenant.Get("/subscription-status", subscriptionHandler.Status)
	tenant.Post("/process-payment", middleware.RequirePermission(roleService, auditService, domain.PermEditFinancial), subscriptionHandler.ProcessPayment)
	tenant.Get("/payment-history", middleware.RequirePermission(roleService, auditService, domain.PermViewFinancial), subscriptionHandler.PaymentHistory)
	tenant.Post("/dismiss-payment-alert", subscriptionHandler.DismissPaymentAlert)

	tenant.Get("/permissions", middleware.RequirePermission(roleService, auditService, domain.PermViewRoles), roleHandler.ListPermissions)
	tenant.Get("/roles", middleware.RequirePermission(roleService, auditService, domain.PermViewRoles), roleHandler.ListRoles)
	tenant.Post("/roles", middleware.RequirePermission(roleService, auditService, domain.PermCreateRoles), roleHandler.CreateRole)
	tenant.Put("/roles/:roleId", middleware.RequirePermission(roleService, auditService, domain.PermEditRoles), roleHandler.UpdateRole)
	tenant.Delete("/roles/:roleId", middleware.RequirePermission(roleService, auditService, domain.PermDeleteRoles), roleHandler.DeleteRole)

	tenant.Get("/employees", middleware.RequirePermission(roleService, auditService, domain.PermViewEmployees), tenantHandler.ListEmployees)
	tenant.Post("/employees", middleware.RequirePermission(roleService, auditService, domain.PermCreateEmployees), tenantHandler.CreateEmployee)
	tenant.Put("/employees/:userId/role", middleware.RequirePermission(roleService, auditService, domain.PermEditEmployees), tenantHandler.UpdateEmployeeRole)
	tenant.Put("/employees/:userId/location", middleware.RequirePermission(roleService, auditService, domain.PermEditEmployees), tenantHandler.UpdateEmployeeLocation)
	tenant.Delete("/employees/:userId", middleware.RequirePermission(roleService, auditService, domain.PermDeleteEmployees), tenantHandler.DeleteEmployee)

	tenant.Get("/locations", middleware.RequirePermission(roleService, auditService, domain.PermViewLocations), tenantHandler.ListLocations)
	tenant.Post("/locations", middleware.RequirePermission(roleService, auditService, domain.PermCreateLocations), tenantHandler.CreateLocation)

	// Platform-operator routes
	admin := api.Group("/admin", authMiddleware, middleware.RequireAdmin(auditService))
	admin.Get("/pending-services", adminHandler.PendingServices)
	admin.Post("/activate-service/:tenantId", adminHandler.ActivateService)
	admin.Post("/toggle-tenant-status/:tenantId", adminHandler.ToggleTenantStatus)
	admin.Post("/extend-grace-period/:tenantId", adminHandler.ExtendGracePeriod)
	admin.Post("/reset-subscription/:tenantId", adminHandler.ResetSubscription)
	admin.Post("/update-subscription-end-date/:tenantId", adminHandler.UpdateSubscriptionEndDate)
	admin.Get("/tenants-expiring-soon", adminHandler.TenantsExpiringSoon)
	admin.Post("/send-payment-notification/:tenantId", adminHandler.SendPaymentNotification)
	admin.Post("/dismiss-payment-notification/:tenantId", adminHandler.DismissPaymentNotification)
	admin.Get("/logs", adminHandler.Logs)
}
