package main

import (
	"log"

	"license-activation-server/internal/config"
	"license-activation-server/internal/database"
	"license-activation-server/internal/handler"
	"license-activation-server/internal/keygen"
	"license-activation-server/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	generator, err := keygen.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("初始化密钥生成器失败:", err)
	}

	sheetSync, err := service.NewSheetSyncService(
		cfg.SheetSyncEnabled,
		cfg.SheetCredentialPath,
		cfg.SpreadsheetID,
		cfg.SheetName,
	)
	if err != nil {
		log.Fatal("初始化Sheet同步失败:", err)
	}

	licenseSvc := service.NewLicenseService(db, generator, sheetSync)
	machineSvc := service.NewMachineService(db)
	validateSvc := service.NewValidationService(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// 中间件
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
	}))

	h := handler.New(db, licenseSvc, machineSvc, validateSvc)
	h.RegisterRoutes(app)

	log.Fatal(app.Listen(":" + cfg.Port))
}
