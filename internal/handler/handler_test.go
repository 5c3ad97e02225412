package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"license-activation-server/internal/database"
	"license-activation-server/internal/keygen"
	"license-activation-server/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *database.Database) {
	t.Helper()

	db := database.InitTestDB()
	t.Cleanup(db.CleanTestDB)

	generator, err := keygen.New("test-key")
	require.NoError(t, err)

	licenseSvc := service.NewLicenseService(db, generator, nil)
	machineSvc := service.NewMachineService(db)
	validateSvc := service.NewValidationService(db)

	app := fiber.New()
	New(db, licenseSvc, machineSvc, validateSvc).RegisterRoutes(app)
	return app, db
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &payload))
	}
	return resp, payload
}
