package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/athlete-assessment-api/internal/completeness"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
)

var errStoreDown = errors.New("connection refused")

type testStores struct {
	db        *gorm.DB
	active    repository.AssessmentRepository
	archive   repository.ArchiveRepository
	auditLogs repository.AuditLogRepository
	audit     AuditService
	validate  *validator.Validate
}

func setupStores(t *testing.T) testStores {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Assessment{}, &models.ArchivedAssessment{}, &models.AuditLog{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	validate := validator.New(validator.WithRequiredStructEnabled())
	auditLogs := repository.NewAuditLogRepository(db)

	return testStores{
		db:        db,
		active:    repository.NewAssessmentRepository(db),
		archive:   repository.NewArchiveRepository(db),
		auditLogs: auditLogs,
		audit:     NewAuditService(auditLogs, validate, zerolog.Nop()),
		validate:  validate,
	}
}

func (s testStores) assessments() AssessmentService {
	return NewAssessmentService(s.active, completeness.Default(), s.validate, s.audit, zerolog.Nop())
}

func (s testStores) auditEntries(t *testing.T, actions ...string) []models.AuditLog {
	t.Helper()
	entries, _, err := s.auditLogs.List(context.Background(), repository.AuditLogFilter{Actions: actions})
	require.NoError(t, err)
	return entries
}

func testActor() AuditActor {
	return AuditActor{ID: "admin-1", Name: "Dr. Admin", Role: "admin"}
}

func completePhysiotherapy() map[string]interface{} {
	return map[string]interface{}{
		"anamnesis": map[string]interface{}{
			"mainComplaint": "Knee pain",
			"injuryHistory": "ACL reconstruction 2021",
		},
		"posture":  map[string]interface{}{"assessment": "Neutral"},
		"mobility": map[string]interface{}{"hip": 110.0, "ankle": 0.0, "shoulder": "full"},
		"strength": map[string]interface{}{
			"tests": map[string]interface{}{"squat": 120.0, "deadlift": 140.0},
		},
		"functional": map[string]interface{}{"fmsScore": 15.0},
	}
}

// flakyActiveRepo fails Delete until healed.
type flakyActiveRepo struct {
	repository.AssessmentRepository
	mu     sync.Mutex
	broken bool
}

func (r *flakyActiveRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.broken {
		return errStoreDown
	}
	return r.AssessmentRepository.Delete(ctx, id)
}

func (r *flakyActiveRepo) heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = false
}

// failingAuditRepo rejects every write.
type failingAuditRepo struct {
	repository.AuditLogRepository
}

func (failingAuditRepo) Create(context.Context, *models.AuditLog) error {
	return errStoreDown
}

// unavailableArchiveRepo fails every read.
type unavailableArchiveRepo struct {
	repository.ArchiveRepository
}

func (unavailableArchiveRepo) GetByID(context.Context, string) (models.ArchivedAssessment, error) {
	return models.ArchivedAssessment{}, errStoreDown
}

func (unavailableArchiveRepo) ListSummaries(context.Context) ([]repository.ArchiveSummary, error) {
	return nil, errStoreDown
}
