package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/athlete-assessment-api/internal/completeness"
	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
	"github.com/noah-isme/athlete-assessment-api/internal/observability"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
)

// AssessmentService handles domain saves and keeps the status cache derived.
type AssessmentService interface {
	Create(ctx context.Context, req dto.AssessmentCreateRequest, actor AuditActor) (dto.AssessmentResponse, error)
	SaveDomain(ctx context.Context, id, domain string, req dto.DomainSaveRequest, actor AuditActor) (dto.AssessmentResponse, error)
	Get(ctx context.Context, id string) (dto.AssessmentResponse, error)
	List(ctx context.Context, req dto.AssessmentListRequest) (dto.AssessmentListResponse, error)
	Recompute(ctx context.Context, id string, actor AuditActor) (dto.RecomputeResponse, error)
	RecomputeAll(ctx context.Context, actor AuditActor) (dto.RecomputeSummary, error)
}

type assessmentService struct {
	repo      repository.AssessmentRepository
	registry  *completeness.Registry
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(repo repository.AssessmentRepository, registry *completeness.Registry, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AssessmentService {
	if registry == nil {
		registry = completeness.Default()
	}
	return &assessmentService{
		repo:      repo,
		registry:  registry,
		validator: validator,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/athlete-assessment-api/internal/service/assessment"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *assessmentService) Create(ctx context.Context, req dto.AssessmentCreateRequest, actor AuditActor) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssessmentResponse{}, err
	}

	fullName := sanitizeText(s.sanitizer, req.FullName)
	if fullName == "" {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: full name is empty after sanitization", ErrInvalidDomainPayload)
	}

	domains := datatypes.JSONMap{}
	for name, data := range req.Domains {
		canonical, err := s.checkDomain(name, data)
		if err != nil {
			return dto.AssessmentResponse{}, err
		}
		domains[canonical] = normalizeBlob(data)
	}

	now := s.now().UTC()
	assessment := models.Assessment{
		ID:        s.newID(),
		FullName:  fullName,
		Domains:   domains,
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	deriveStatus(s.registry, &assessment)

	if err := s.repo.Put(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, storeError(err, nil)
	}

	s.audit.Append(ctx, AuditEntry{
		Actor:     actor,
		Action:    models.AuditActionCreated,
		Detail:    FormatDetail(models.AuditActionCreated, assessment, ""),
		SubjectID: assessment.ID,
	})

	return dto.NewAssessmentResponse(assessment, s.registry), nil
}

func (s *assessmentService) SaveDomain(ctx context.Context, id, domain string, req dto.DomainSaveRequest, actor AuditActor) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessments.save_domain", trace.WithAttributes(
		attribute.String("assessment.id", id),
		attribute.String("assessment.domain", domain),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.AssessmentResponse{}, err
	}

	canonical, err := s.checkDomain(domain, req.Data)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		err = storeError(err, ErrAssessmentNotFound)
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}

	if assessment.Domains == nil {
		assessment.Domains = datatypes.JSONMap{}
	}
	assessment.Domains[canonical] = normalizeBlob(req.Data)
	assessment.UpdatedAt = s.now().UTC()
	assessment.UpdatedBy = actor.ID
	deriveStatus(s.registry, &assessment)

	if err := s.repo.Put(ctx, &assessment); err != nil {
		err = storeError(err, nil)
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}

	domainStatus, _ := assessment.DomainStatuses[canonical].(string)
	observability.DomainSaves().WithLabelValues(canonical, domainStatus).Inc()
	span.SetAttributes(
		attribute.String("assessment.domain_status", domainStatus),
		attribute.String("assessment.status", assessment.Status),
	)

	s.audit.Append(ctx, AuditEntry{
		Actor:     actor,
		Action:    models.AuditActionUpdated,
		Detail:    FormatDetail(models.AuditActionUpdated, assessment, ""),
		SubjectID: assessment.ID,
	})

	return dto.NewAssessmentResponse(assessment, s.registry), nil
}

func (s *assessmentService) Get(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AssessmentResponse{}, storeError(err, ErrAssessmentNotFound)
	}
	return dto.NewAssessmentResponse(assessment, s.registry), nil
}

func (s *assessmentService) List(ctx context.Context, req dto.AssessmentListRequest) (dto.AssessmentListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssessmentListResponse{}, err
	}

	filter := repository.AssessmentFilter{
		Search:   strings.TrimSpace(req.Search),
		Status:   strings.TrimSpace(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	assessments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AssessmentListResponse{}, storeError(err, nil)
	}

	items := make([]dto.AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		items = append(items, dto.NewAssessmentResponse(assessment, s.registry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AssessmentListResponse{Items: items, Pagination: pagination}, nil
}

func (s *assessmentService) Recompute(ctx context.Context, id string, actor AuditActor) (dto.RecomputeResponse, error) {
	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.RecomputeResponse{}, storeError(err, ErrAssessmentNotFound)
	}
	return s.recompute(ctx, assessment, actor)
}

func (s *assessmentService) RecomputeAll(ctx context.Context, actor AuditActor) (dto.RecomputeSummary, error) {
	assessments, _, err := s.repo.List(ctx, repository.AssessmentFilter{})
	if err != nil {
		return dto.RecomputeSummary{}, storeError(err, nil)
	}

	summary := dto.RecomputeSummary{IDs: make([]string, 0)}
	for _, assessment := range assessments {
		summary.Scanned++
		result, err := s.recompute(ctx, assessment, actor)
		if err != nil {
			return summary, err
		}
		if result.Corrected {
			summary.Corrected++
			summary.IDs = append(summary.IDs, assessment.ID)
		}
	}

	s.logger.Info().
		Int("scanned", summary.Scanned).
		Int("corrected", summary.Corrected).
		Msg("status cache sweep finished")
	return summary, nil
}

func (s *assessmentService) recompute(ctx context.Context, assessment models.Assessment, actor AuditActor) (dto.RecomputeResponse, error) {
	previous := assessment.Status
	if !deriveStatus(s.registry, &assessment) {
		return dto.RecomputeResponse{
			Assessment: dto.NewAssessmentResponse(assessment, s.registry),
			Previous:   previous,
		}, nil
	}

	if err := s.repo.Put(ctx, &assessment); err != nil {
		return dto.RecomputeResponse{}, storeError(err, nil)
	}

	s.logger.Warn().
		Str("assessment_id", assessment.ID).
		Str("previous_status", previous).
		Str("status", assessment.Status).
		Msg("corrected stale status cache")

	s.audit.Append(ctx, AuditEntry{
		Actor:     actor,
		Action:    models.AuditActionCorrected,
		Detail:    FormatDetail(models.AuditActionCorrected, assessment, ""),
		SubjectID: assessment.ID,
	})

	return dto.RecomputeResponse{
		Assessment: dto.NewAssessmentResponse(assessment, s.registry),
		Corrected:  true,
		Previous:   previous,
	}, nil
}

// checkDomain resolves the canonical domain name and validates the blob shape.
func (s *assessmentService) checkDomain(name string, data map[string]interface{}) (string, error) {
	def, ok := s.registry.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDomain, name)
	}
	if err := s.registry.Validate(string(def.Name), data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidDomainPayload, def.Name, err)
	}
	return string(def.Name), nil
}

// deriveStatus recomputes DomainStatuses and Status from the raw blobs and
// reports whether the cache changed.
func deriveStatus(registry *completeness.Registry, assessment *models.Assessment) bool {
	summary := registry.Summarize(map[string]interface{}(assessment.Domains))

	statuses := datatypes.JSONMap{}
	for domain, result := range summary.Domains {
		statuses[string(domain)] = string(result.Status)
	}

	changed := assessment.Status != string(summary.Status) || !sameStatuses(assessment.DomainStatuses, statuses)
	assessment.Status = string(summary.Status)
	assessment.DomainStatuses = statuses
	return changed
}

func sameStatuses(current, next datatypes.JSONMap) bool {
	if len(current) != len(next) {
		return false
	}
	for key, value := range next {
		if existing, ok := current[key].(string); !ok || existing != value {
			return false
		}
	}
	return true
}

func normalizeBlob(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return data
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
