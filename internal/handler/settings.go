package handler

import (
	"github.com/gofiber/fiber/v2"
)

// HandleGetSettings 获取全局设置
func (h *Handler) HandleGetSettings(c *fiber.Ctx) error {
	settings, err := h.store.GetSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "获取设置失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"settings": fiber.Map{
			"trialDuration": settings.TrialDuration,
			"maxMachines":   settings.MaxMachines,
		},
	})
}

// HandleUpdateSettings 更新全局设置
func (h *Handler) HandleUpdateSettings(c *fiber.Ctx) error {
	type SettingsInput struct {
		TrialDuration *int `json:"trialDuration"`
		MaxMachines   *int `json:"maxMachines"`
	}

	input := new(SettingsInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "无效的输入数据",
		})
	}

	if input.TrialDuration == nil || input.MaxMachines == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "参数不完整",
		})
	}

	settings, err := h.store.UpdateSettings(*input.TrialDuration, *input.MaxMachines)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "保存设置失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"settings": fiber.Map{
			"trialDuration": settings.TrialDuration,
			"maxMachines":   settings.MaxMachines,
		},
	})
}
