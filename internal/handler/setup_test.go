package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/athlete-assessment-api/internal/completeness"
	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/handler"
	"github.com/noah-isme/athlete-assessment-api/internal/middleware"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
	"github.com/noah-isme/athlete-assessment-api/internal/service"
)

type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	assessments service.AssessmentService
	archive     service.ArchiveService
	auditLogs   repository.AuditLogRepository
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func setupEnv(t *testing.T, role string) testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Assessment{}, &models.ArchivedAssessment{}, &models.AuditLog{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	validate := validator.New(validator.WithRequiredStructEnabled())
	registry := completeness.Default()
	active := repository.NewAssessmentRepository(db)
	archive := repository.NewArchiveRepository(db)
	auditLogs := repository.NewAuditLogRepository(db)

	audit := service.NewAuditService(auditLogs, validate, zerolog.Nop())
	assessments := service.NewAssessmentService(active, registry, validate, audit, zerolog.Nop())
	archiveSvc := service.NewArchiveService(active, archive, auditLogs, audit, registry, service.ArchiveServiceOptions{}, zerolog.Nop())

	app := fiber.New()
	app.Use(identity(role))
	handler.NewAssessmentHandler(assessments, zerolog.Nop()).Register(app.Group("/api/v1/assessments"))
	handler.NewGovernanceHandler(archiveSvc, audit, zerolog.Nop()).Register(app.Group("/api/v1/governance"))

	return testEnv{app: app, db: db, assessments: assessments, archive: archiveSvc, auditLogs: auditLogs}
}

func identity(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, "user-1")
		c.Locals(middleware.LocalUserName, "Dr. Admin")
		c.Locals(middleware.LocalUserRole, role)
		return c.Next()
	}
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (e testEnv) createAssessment(t *testing.T, name string) dto.AssessmentResponse {
	t.Helper()
	created, err := e.assessments.Create(context.Background(), dto.AssessmentCreateRequest{FullName: name}, service.AuditActor{ID: "seed"})
	require.NoError(t, err)
	return created
}

func completePhysiotherapy() map[string]interface{} {
	return map[string]interface{}{
		"anamnesis":  map[string]interface{}{"mainComplaint": "Knee pain", "injuryHistory": "ACL 2021"},
		"posture":    map[string]interface{}{"assessment": "Neutral"},
		"mobility":   map[string]interface{}{"hip": 110, "ankle": 35, "shoulder": "full"},
		"strength":   map[string]interface{}{"tests": map[string]interface{}{"squat": 120}},
		"functional": map[string]interface{}{"fmsScore": 15},
	}
}
