package handler

import (
	"license-activation-server/internal/service"
	"license-activation-server/internal/store"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	store     store.Store
	licenses  *service.LicenseService
	machines  *service.MachineService
	validator *service.ValidationService
}

func New(s store.Store, licenses *service.LicenseService, machines *service.MachineService, validator *service.ValidationService) *Handler {
	return &Handler{
		store:     s,
		licenses:  licenses,
		machines:  machines,
		validator: validator,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	// 许可证路由
	api.Get("/licenses", h.HandleGetAllLicenses)
	api.Post("/licenses", h.HandleLicenseCreate)
	api.Delete("/licenses/:id", h.HandleLicenseDelete)
	api.Get("/licenses/:id/usage", h.HandleLicenseUsage)

	// 机器路由
	api.Get("/machines", h.HandleGetAllMachines)
	api.Post("/machines/register", h.HandleMachineRegister)
	api.Post("/machines/:machineId/reset-trial", h.HandleTrialReset)

	// 设置路由
	api.Get("/settings", h.HandleGetSettings)
	api.Post("/settings", h.HandleUpdateSettings)

	// 许可证验证路由
	api.Post("/validate-license", h.HandleValidateLicense)
}
