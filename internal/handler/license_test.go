package handler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLicenseCreate(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid_license",
			body:       fmt.Sprintf(`{"expirationDate":"%s"}`, time.Now().AddDate(0, 0, 30).Format("2006-01-02")),
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "pre_bound_license",
			body:       fmt.Sprintf(`{"expirationDate":"%s","machineId":"m1"}`, time.Now().AddDate(0, 0, 30).Format("2006-01-02")),
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "missing_expiration",
			body:       `{}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "bad_date_format",
			body:       `{"expirationDate":"not-a-date"}`,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, payload := doRequest(t, app, "POST", "/api/licenses", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusOK {
				license := payload["license"].(map[string]interface{})
				key := license["key"].(string)
				// 不透明格式:hex(iv):hex(ciphertext)
				assert.True(t, strings.Contains(key, ":"))
				assert.NotEmpty(t, license["id"])
				assert.Equal(t, true, license["is_active"])
			}
		})
	}
}

func TestHandleLicenseListAndDelete(t *testing.T) {
	app, _ := newTestApp(t)

	body := fmt.Sprintf(`{"expirationDate":"%s"}`, time.Now().AddDate(0, 0, 30).Format("2006-01-02"))
	_, payload := doRequest(t, app, "POST", "/api/licenses", body)
	id := payload["license"].(map[string]interface{})["id"].(string)

	_, payload = doRequest(t, app, "GET", "/api/licenses", "")
	licenses := payload["licenses"].([]interface{})
	require.Len(t, licenses, 1)

	resp, _ := doRequest(t, app, "DELETE", "/api/licenses/"+id, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, payload = doRequest(t, app, "GET", "/api/licenses", "")
	assert.Empty(t, payload["licenses"])
}

func TestHandleLicenseUsage(t *testing.T) {
	app, _ := newTestApp(t)

	body := fmt.Sprintf(`{"expirationDate":"%s"}`, time.Now().AddDate(0, 0, 30).Format("2006-01-02"))
	_, payload := doRequest(t, app, "POST", "/api/licenses", body)
	license := payload["license"].(map[string]interface{})
	id := license["id"].(string)
	key := license["key"].(string)

	resp, payload := doRequest(t, app, "GET", "/api/licenses/"+id+"/usage", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, payload["usage"])

	doRequest(t, app, "POST", "/api/validate-license",
		fmt.Sprintf(`{"licenseKey":%q,"machineId":"m1"}`, key))

	_, payload = doRequest(t, app, "GET", "/api/licenses/"+id+"/usage", "")
	usage := payload["usage"].([]interface{})
	require.Len(t, usage, 1)
	record := usage[0].(map[string]interface{})
	assert.Equal(t, "m1", record["machine_id"])

	resp, _ = doRequest(t, app, "GET", "/api/licenses/no-such-id/usage", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
