package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "github.com/saferoute-service/docs"
	"github.com/saferoute-service/internal/config"
	httpDelivery "github.com/saferoute-service/internal/delivery/http"
	"github.com/saferoute-service/internal/delivery/http/handler"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/render"
)

func newServer(t *testing.T) *httpDelivery.Server {
	t.Helper()

	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	cfg := &config.Config{Server: config.ServerConfig{
		Host:        "127.0.0.1",
		Port:        0,
		CORSOrigins: "http://localhost:3000",
	}}
	routes := handler.NewRouteHandler(nil, renderer, zap.NewNop())
	health := handler.NewHealthHandler(nil)

	return httpDelivery.NewServer(cfg, zap.NewNop(), routes, health)
}

func decodeError(t *testing.T, body io.Reader) errors.AppError {
	t.Helper()

	var payload struct {
		Error errors.AppError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	return payload.Error
}

func TestServer_Health(t *testing.T) {
	app := newServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestServer_NotFound(t *testing.T) {
	app := newServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/unknown", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	appErr := decodeError(t, resp.Body)
	assert.Equal(t, errors.CodeInternal, appErr.Code)
	assert.Contains(t, appErr.Message, "/api/v1/unknown")
}

func TestServer_RecoversFromPanic(t *testing.T) {
	app := newServer(t).App()
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, errors.CodeInternal, decodeError(t, resp.Body).Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	app := newServer(t).App()

	req := httptest.NewRequest("OPTIONS", "/api/v1/routes/safest", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestServer_SwaggerDoc(t *testing.T) {
	app := newServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/swagger/doc.json", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "/api/v1/routes/safest")
	assert.Contains(t, string(body), "SafeRoute Service API")
}
