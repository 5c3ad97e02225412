package handler

import (
	"license-activation-server/internal/model"
	"license-activation-server/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandleGetAllMachines 获取所有机器数据
func (h *Handler) HandleGetAllMachines(c *fiber.Ctx) error {
	machines, err := h.machines.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "获取机器数据失败",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"machines": machines,
	})
}

// HandleMachineRegister 机器注册/心跳
func (h *Handler) HandleMachineRegister(c *fiber.Ctx) error {
	type RegisterInput struct {
		MachineID  string               `json:"machineId"`
		Hostname   string               `json:"hostname"`
		Platform   string               `json:"platform"`
		Version    string               `json:"version"`
		LicenseKey model.OptionalString `json:"licenseKey"`
	}

	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "无效的输入数据",
		})
	}

	if input.MachineID == "" || input.Hostname == "" || input.Platform == "" || input.Version == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "机器数据不完整",
		})
	}

	// 空字符串密钥等同于显式 null
	if input.LicenseKey.Set && input.LicenseKey.Valid && input.LicenseKey.Value == "" {
		input.LicenseKey.Valid = false
	}

	machine, err := h.machines.RegisterOrHeartbeat(service.RegisterInput{
		MachineID:  input.MachineID,
		Hostname:   input.Hostname,
		Platform:   input.Platform,
		Version:    input.Version,
		LicenseKey: input.LicenseKey,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "注册机器失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"machine": machine,
	})
}

// HandleTrialReset 重置机器的试用期并封锁其当前密钥
func (h *Handler) HandleTrialReset(c *fiber.Ctx) error {
	machineID := c.Params("machineId")

	if err := h.machines.ResetTrial(machineID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "重置机器失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
