package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

// AuditLogFilter narrows audit log queries.
type AuditLogFilter struct {
	Actions   []string
	ActorID   string
	SubjectID string
	Limit     int
	Offset    int
}

// AuditLogRepository persists the append-only audit trail.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	GetByID(ctx context.Context, id uint) (models.AuditLog, error)
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) GetByID(ctx context.Context, id uint) (models.AuditLog, error) {
	var entry models.AuditLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return models.AuditLog{}, err
	}
	return entry, nil
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	switch len(filter.Actions) {
	case 0:
	case 1:
		query = query.Where("action = ?", filter.Actions[0])
	default:
		query = query.Where("action IN ?", filter.Actions)
	}

	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}

	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
