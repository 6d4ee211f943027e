package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/athlete-assessment-api/internal/completeness"
	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
	"github.com/noah-isme/athlete-assessment-api/internal/observability"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
)

const (
	restorableCacheKey    = "governance:restorable"
	defaultRestorableTTL  = 30 * time.Second
	defaultAuditScanLimit = 500
	lifecycleTracerName   = "github.com/noah-isme/athlete-assessment-api/internal/service/archive"

	archiveTransitionName = "archive"
	restoreTransitionName = "restore"

	stepArchiveWrite  = "archive-write"
	stepActiveRemove  = "active-remove"
	stepActiveWrite   = "active-write"
	stepArchiveRemove = "archive-remove"
	stepAuditAppend   = "audit-append"
)

// ArchiveService moves assessments between the active and archive stores.
type ArchiveService interface {
	Delete(ctx context.Context, id string, actor AuditActor) (dto.ArchiveResult, error)
	ListRestorable(ctx context.Context) (dto.RestorableListResponse, error)
	Restore(ctx context.Context, id string, actor AuditActor) (dto.AssessmentResponse, error)
	RestoreEntry(ctx context.Context, entryID uint, actor AuditActor) (dto.AssessmentResponse, error)
	State(ctx context.Context, id string) (dto.LifecycleStateResponse, error)
}

// ArchiveServiceOptions tunes the coordinator. Zero values use defaults.
type ArchiveServiceOptions struct {
	Cache          *redis.Client
	CacheTTL       time.Duration
	AuditScanLimit int
	Events         EventPublisher
}

type archiveService struct {
	active    repository.AssessmentRepository
	archive   repository.ArchiveRepository
	auditLogs repository.AuditLogRepository
	audit     AuditRecorder
	registry  *completeness.Registry
	cache     *redis.Client
	cacheTTL  time.Duration
	scanLimit int
	events    EventPublisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewArchiveService constructs the archive/restore coordinator.
func NewArchiveService(
	active repository.AssessmentRepository,
	archive repository.ArchiveRepository,
	auditLogs repository.AuditLogRepository,
	audit AuditRecorder,
	registry *completeness.Registry,
	opts ArchiveServiceOptions,
	logger zerolog.Logger,
) ArchiveService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultRestorableTTL
	}
	if opts.AuditScanLimit <= 0 {
		opts.AuditScanLimit = defaultAuditScanLimit
	}
	if opts.Events == nil {
		opts.Events = noopPublisher{}
	}
	if registry == nil {
		registry = completeness.Default()
	}

	return &archiveService{
		active:    active,
		archive:   archive,
		auditLogs: auditLogs,
		audit:     audit,
		registry:  registry,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		scanLimit: opts.AuditScanLimit,
		events:    opts.Events,
		logger:    logger.With().Str("component", "archive_service").Logger(),
		tracer:    otel.Tracer(lifecycleTracerName),
		now:       time.Now,
	}
}

func (s *archiveService) Delete(ctx context.Context, id string, actor AuditActor) (dto.ArchiveResult, error) {
	ctx, span := s.tracer.Start(ctx, "assessments.archive", trace.WithAttributes(attribute.String("assessment.id", id)))
	defer span.End()

	assessment, err := s.active.GetByID(ctx, id)
	if err != nil {
		err = storeError(err, ErrAssessmentNotFound)
		span.RecordError(err)
		return dto.ArchiveResult{}, err
	}

	archived := models.ArchivedAssessment{
		Assessment: assessment,
		ArchivedAt: s.now().UTC(),
		ArchivedBy: actor.ID,
	}

	move := newTransition(archiveTransitionName, s.logger.With().Str("assessment_id", id).Logger(),
		moveStep{name: stepArchiveWrite, run: func(ctx context.Context) error {
			return s.archive.Put(ctx, &archived)
		}},
		moveStep{name: stepActiveRemove, run: func(ctx context.Context) error {
			return s.active.Delete(ctx, id)
		}},
		moveStep{name: stepAuditAppend, run: func(ctx context.Context) error {
			s.audit.Append(ctx, AuditEntry{
				Actor:      actor,
				Action:     models.AuditActionDeleted,
				Detail:     FormatDetail(models.AuditActionDeleted, assessment, id),
				SubjectID:  id,
				ArchiveRef: id,
			})
			return nil
		}},
	)
	if err := move.execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "archive_failed")
		// Earlier steps may have committed.
		s.invalidateRestorable(ctx)
		return dto.ArchiveResult{}, storeError(err, nil)
	}

	s.invalidateRestorable(ctx)
	s.publish(ctx, LifecycleEvent{
		Type:      EventAssessmentDeleted,
		ID:        id,
		FullName:  assessment.FullName,
		ActorID:   actor.ID,
		ArchiveID: id,
	})

	return dto.ArchiveResult{ID: id, ArchiveID: id, State: string(StateArchived)}, nil
}

func (s *archiveService) Restore(ctx context.Context, id string, actor AuditActor) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessments.restore", trace.WithAttributes(attribute.String("assessment.id", id)))
	defer span.End()

	archived, err := s.archive.GetByID(ctx, id)
	if err != nil {
		err = storeError(err, ErrArchiveNotFound)
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}

	return s.restore(ctx, span, archived, actor)
}

func (s *archiveService) RestoreEntry(ctx context.Context, entryID uint, actor AuditActor) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessments.restore_entry", trace.WithAttributes(attribute.Int64("audit.entry_id", int64(entryID))))
	defer span.End()

	entry, err := auditEntry(ctx, s.auditLogs, entryID)
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}
	if entry.Action != models.AuditActionDeleted {
		return dto.AssessmentResponse{}, ErrNotDeletionEntry
	}

	index, err := s.loadArchiveIndex(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}

	resolved, err := index.resolve(entry)
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}
	span.SetAttributes(
		attribute.String("assessment.id", resolved.ArchiveID),
		attribute.String("archive.resolution", resolved.Method),
	)

	archived, err := s.archive.GetByID(ctx, resolved.ArchiveID)
	if err != nil {
		err = storeError(err, ErrArchiveNotFound)
		span.RecordError(err)
		return dto.AssessmentResponse{}, err
	}

	return s.restore(ctx, span, archived, actor)
}

func (s *archiveService) restore(ctx context.Context, span trace.Span, archived models.ArchivedAssessment, actor AuditActor) (dto.AssessmentResponse, error) {
	assessment := archived.Assessment
	id := assessment.ID

	move := newTransition(restoreTransitionName, s.logger.With().Str("assessment_id", id).Logger(),
		moveStep{name: stepActiveWrite, run: func(ctx context.Context) error {
			return s.active.Put(ctx, &assessment)
		}},
		moveStep{name: stepArchiveRemove, run: func(ctx context.Context) error {
			return s.archive.Delete(ctx, id)
		}},
		moveStep{name: stepAuditAppend, run: func(ctx context.Context) error {
			s.audit.Append(ctx, AuditEntry{
				Actor:      actor,
				Action:     models.AuditActionRestored,
				Detail:     FormatDetail(models.AuditActionRestored, assessment, id),
				SubjectID:  id,
				ArchiveRef: id,
			})
			return nil
		}},
	)
	if err := move.execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restore_failed")
		// Earlier steps may have committed.
		s.invalidateRestorable(ctx)
		return dto.AssessmentResponse{}, storeError(err, nil)
	}

	s.invalidateRestorable(ctx)
	s.publish(ctx, LifecycleEvent{
		Type:      EventAssessmentRestored,
		ID:        id,
		FullName:  assessment.FullName,
		ActorID:   actor.ID,
		ArchiveID: id,
	})

	return dto.NewAssessmentResponse(assessment, s.registry), nil
}

func (s *archiveService) ListRestorable(ctx context.Context) (dto.RestorableListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessments.list_restorable")
	defer span.End()

	// The archive store decides what is restorable, so its snapshot is read
	// on every call and a cached list is served only while it still matches.
	index, err := s.loadArchiveIndex(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.RestorableListResponse{}, err
	}
	fingerprint := index.fingerprint()

	if cached, ok := s.cachedRestorable(ctx, fingerprint); ok {
		span.SetAttributes(attribute.Bool("governance.cache_hit", true))
		return cached, nil
	}

	entries, _, err := s.auditLogs.List(ctx, repository.AuditLogFilter{
		Actions: []string{models.AuditActionDeleted},
		Limit:   s.scanLimit,
	})
	if err != nil {
		err = storeError(err, nil)
		span.RecordError(err)
		return dto.RestorableListResponse{}, err
	}

	items := make([]dto.RestorableEntry, 0, len(entries))
	claimed := make(map[string]struct{}, len(entries))
	suppressed := 0

	for _, entry := range entries {
		resolved, err := index.resolve(entry)
		item := dto.RestorableEntry{
			EntryID:   entry.ID,
			Detail:    entry.Detail,
			ActorID:   entry.ActorID,
			ActorName: entry.ActorName,
			DeletedAt: entry.CreatedAt,
		}

		switch {
		case errors.Is(err, ErrAmbiguousMatch):
			item.FullName = resolved.Name
			item.Resolution = resolutionName
			item.Ambiguous = true
			item.Candidates = resolved.Candidates
		case err != nil:
			suppressed++
			continue
		default:
			// Entries arrive newest first; older deletions of the same
			// record point at the same archived copy.
			if _, seen := claimed[resolved.ArchiveID]; seen {
				continue
			}
			claimed[resolved.ArchiveID] = struct{}{}
			item.ArchiveID = resolved.ArchiveID
			item.FullName = index.names[resolved.ArchiveID]
			item.Resolution = resolved.Method
		}

		items = append(items, item)
	}

	for _, summary := range index.summaries {
		if _, seen := claimed[summary.ID]; seen {
			continue
		}
		items = append(items, dto.RestorableEntry{
			ArchiveID:  summary.ID,
			FullName:   summary.FullName,
			DeletedAt:  summary.ArchivedAt,
			Resolution: resolutionArchiveOnly,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DeletedAt.After(items[j].DeletedAt)
	})

	if suppressed > 0 {
		observability.RestorableSuppressed().Add(float64(suppressed))
	}
	span.SetAttributes(
		attribute.Int("governance.restorable", len(items)),
		attribute.Int("governance.suppressed", suppressed),
	)

	response := dto.RestorableListResponse{Items: items}
	s.storeRestorable(ctx, fingerprint, response)
	return response, nil
}

func (s *archiveService) State(ctx context.Context, id string) (dto.LifecycleStateResponse, error) {
	active, err := s.active.Exists(ctx, id)
	if err != nil {
		return dto.LifecycleStateResponse{}, storeError(err, nil)
	}
	archived, err := s.archive.Exists(ctx, id)
	if err != nil {
		return dto.LifecycleStateResponse{}, storeError(err, nil)
	}

	return dto.LifecycleStateResponse{
		ID:       id,
		State:    string(lifecycleState(active, archived)),
		Active:   active,
		Archived: archived,
	}, nil
}

func (s *archiveService) loadArchiveIndex(ctx context.Context) (archiveIndex, error) {
	summaries, err := s.archive.ListSummaries(ctx)
	if err != nil {
		return archiveIndex{}, storeError(err, nil)
	}
	return newArchiveIndex(summaries), nil
}

// restorableSnapshot is a list computed against one archive snapshot.
type restorableSnapshot struct {
	Fingerprint string                     `json:"fingerprint"`
	Response    dto.RestorableListResponse `json:"response"`
}

func (s *archiveService) cachedRestorable(ctx context.Context, fingerprint string) (dto.RestorableListResponse, bool) {
	if s.cache == nil {
		return dto.RestorableListResponse{}, false
	}

	payload, err := s.cache.Get(ctx, restorableCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read restorable cache")
		}
		return dto.RestorableListResponse{}, false
	}

	var cached restorableSnapshot
	if err := json.Unmarshal(payload, &cached); err != nil {
		return dto.RestorableListResponse{}, false
	}
	if cached.Fingerprint != fingerprint {
		s.logger.Debug().Msg("archive store changed; rebuilding restorable list")
		return dto.RestorableListResponse{}, false
	}

	response := cached.Response
	response.CacheHit = true
	return response, true
}

func (s *archiveService) storeRestorable(ctx context.Context, fingerprint string, response dto.RestorableListResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(restorableSnapshot{Fingerprint: fingerprint, Response: response})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, restorableCacheKey, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store restorable cache")
	}
}

func (s *archiveService) invalidateRestorable(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, restorableCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate restorable cache")
	}
}

func (s *archiveService) publish(ctx context.Context, event LifecycleEvent) {
	event.SentAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish lifecycle event")
	}
}
