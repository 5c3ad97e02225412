package handler

import (
	"github.com/gofiber/fiber/v2"
)

// HandleValidateLicense 客户端周期性调用的验证入口。
// 业务性失败返回 200 和 valid=false 加原因码,
// 只有参数缺失和存储故障才是传输层错误。
func (h *Handler) HandleValidateLicense(c *fiber.Ctx) error {
	type ValidateInput struct {
		LicenseKey string `json:"licenseKey"`
		MachineID  string `json:"machineId"`
	}

	input := new(ValidateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "无效的输入数据",
		})
	}

	if input.LicenseKey == "" || input.MachineID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "许可证密钥和机器ID不能为空",
		})
	}

	result, err := h.validator.Validate(input.LicenseKey, input.MachineID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "验证许可证失败",
		})
	}

	if !result.Valid {
		return c.JSON(fiber.Map{
			"valid": false,
			"error": result.Reason,
		})
	}

	return c.JSON(fiber.Map{
		"valid":   true,
		"license": result.License,
	})
}
