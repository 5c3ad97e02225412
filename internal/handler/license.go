package handler

import (
	"errors"
	"time"

	"license-activation-server/internal/store"

	"github.com/gofiber/fiber/v2"
)

// HandleGetAllLicenses 获取所有许可证数据
func (h *Handler) HandleGetAllLicenses(c *fiber.Ctx) error {
	licenses, err := h.licenses.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "获取许可证数据失败",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"licenses": licenses,
	})
}

// HandleLicenseCreate 签发许可证。machineId 可选:
// 不传则创建未绑定的通用许可证,首次验证时再绑定。
func (h *Handler) HandleLicenseCreate(c *fiber.Ctx) error {
	type CreateInput struct {
		ExpirationDate string `json:"expirationDate"`
		MachineID      string `json:"machineId"`
	}

	input := new(CreateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "无效的输入数据",
		})
	}

	if input.ExpirationDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "过期日期不能为空",
		})
	}

	expirationDate, err := parseExpirationDate(input.ExpirationDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "过期日期格式错误",
		})
	}

	var machineID *string
	if input.MachineID != "" {
		machineID = &input.MachineID
	}

	license, err := h.licenses.Create(expirationDate, machineID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "创建许可证失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"license": license,
	})
}

// HandleLicenseDelete 删除许可证
func (h *Handler) HandleLicenseDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.licenses.Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "删除许可证失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleLicenseUsage 查询许可证的使用记录
func (h *Handler) HandleLicenseUsage(c *fiber.Ctx) error {
	id := c.Params("id")

	usage, err := h.licenses.Usage(id)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "许可证不存在",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "查询使用记录失败",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"usage":   usage,
	})
}

// 同时接受 RFC3339 和 YYYY-MM-DD 两种日期格式
func parseExpirationDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
