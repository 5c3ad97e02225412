package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port         string `envconfig:"PORT" default:"3001"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/license.db"`
	// EncryptionKey 派生许可证密钥的加密密钥,生产环境必须改掉默认值
	EncryptionKey string `envconfig:"ENCRYPTION_KEY" default:"default-key"`
	CORSOrigin    string `envconfig:"CORS_ORIGIN" default:"*"`

	SheetSyncEnabled    bool   `envconfig:"SHEET_SYNC_ENABLED" default:"false"`
	SheetCredentialPath string `envconfig:"SHEET_CREDENTIAL_PATH"`
	SpreadsheetID       string `envconfig:"SPREADSHEET_ID"`
	SheetName           string `envconfig:"SHEET_NAME" default:"licenses"`
}

// Load 读取 .env(如果有)和环境变量
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
