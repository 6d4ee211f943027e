package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
	"github.com/noah-isme/athlete-assessment-api/internal/observability"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
)

// AuditActor identifies the authenticated user performing a mutation.
type AuditActor struct {
	ID   string
	Name string
	Role string
}

// AuditEntry captures the details required to persist an audit entry.
type AuditEntry struct {
	Actor      AuditActor
	Action     string
	Detail     string
	SubjectID  string
	ArchiveRef string
}

// AuditRecorder appends audit entries. Append never fails from the caller's
// point of view: persistence errors are logged and counted.
type AuditRecorder interface {
	Append(ctx context.Context, entry AuditEntry)
}

// AuditService exposes the write and read sides of the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	repo      repository.AuditLogRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuditService constructs the audit log service.
func NewAuditService(repo repository.AuditLogRepository, validator *validator.Validate, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:      repo,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "audit_service").Logger(),
		now:       time.Now,
	}
}

func (s *auditService) Append(ctx context.Context, entry AuditEntry) {
	if err := s.append(ctx, entry); err != nil {
		observability.AuditWriteFailures().WithLabelValues(entry.Action).Inc()
		s.logger.Error().
			Err(err).
			Str("action", entry.Action).
			Str("actor_id", entry.Actor.ID).
			Str("subject_id", entry.SubjectID).
			Msg("failed to persist audit entry")
	}
}

func (s *auditService) append(ctx context.Context, entry AuditEntry) error {
	action := strings.ToUpper(strings.TrimSpace(entry.Action))
	if _, ok := auditVerbs[action]; !ok {
		return fmt.Errorf("%w: unsupported action %q", ErrAuditWriteFailure, entry.Action)
	}

	model := models.AuditLog{
		ActorID:    strings.TrimSpace(entry.Actor.ID),
		ActorName:  sanitizeText(s.sanitizer, entry.Actor.Name),
		Action:     action,
		Detail:     sanitizeText(s.sanitizer, entry.Detail),
		SubjectID:  entry.SubjectID,
		ArchiveRef: entry.ArchiveRef,
		CreatedAt:  s.now().UTC(),
	}
	if model.ActorID == "" {
		model.ActorID = "system"
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		return fmt.Errorf("%w: %w", ErrAuditWriteFailure, err)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	if s.validator != nil {
		if err := s.validator.Struct(req); err != nil {
			return dto.AuditListResponse{}, err
		}
	}

	filter := repository.AuditLogFilter{
		Actions:   req.Actions,
		ActorID:   strings.TrimSpace(req.ActorID),
		SubjectID: strings.TrimSpace(req.SubjectID),
		Limit:     req.Limit,
		Offset:    req.Offset,
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, storeError(err, nil)
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}

	return dto.AuditListResponse{Items: items, Total: total}, nil
}

// auditEntry loads a single entry for the restore path.
func auditEntry(ctx context.Context, repo repository.AuditLogRepository, id uint) (models.AuditLog, error) {
	entry, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AuditLog{}, ErrAuditEntryNotFound
		}
		return models.AuditLog{}, storeError(err, nil)
	}
	return entry, nil
}

// sanitizeText strips markup while keeping the literal characters of names,
// so a sanitized display name still matches the stored one exactly.
func sanitizeText(policy *bluemonday.Policy, value string) string {
	if policy == nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}
