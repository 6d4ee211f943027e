package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/athlete-assessment-api/internal/config"
	"github.com/noah-isme/athlete-assessment-api/internal/handler"
)

type healthEnvelope struct {
	Success bool                   `json:"success"`
	Data    handler.HealthResponse `json:"data"`
}

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{
		AppName: "Athlete Assessment API",
		AppEnv:  "test",
	}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg, map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
	}))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to execute request: %v", err)
	}

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload healthEnvelope
	err = json.NewDecoder(resp.Body).Decode(&payload)
	assert.NoError(t, err)
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Data.Status)
	assert.Equal(t, cfg.AppName, payload.Data.Service)
	assert.Equal(t, cfg.AppEnv, payload.Data.Environment)
	assert.Equal(t, "up", payload.Data.Dependencies["database"])
	assert.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestHealthCheckDegraded(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{}, map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if err != nil {
		t.Fatalf("failed to execute request: %v", err)
	}

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var payload healthEnvelope
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "degraded", payload.Data.Status)
	assert.Equal(t, "down", payload.Data.Dependencies["redis"])
	assert.Equal(t, "up", payload.Data.Dependencies["database"])
}
