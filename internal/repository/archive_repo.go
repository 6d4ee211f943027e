package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

// ArchiveSummary is the lightweight projection used to reconcile audit entries.
type ArchiveSummary struct {
	ID         string
	FullName   string
	ArchivedAt time.Time
}

// ArchiveRepository is the archive store holding soft-deleted assessments.
type ArchiveRepository interface {
	Put(ctx context.Context, archived *models.ArchivedAssessment) error
	GetByID(ctx context.Context, id string) (models.ArchivedAssessment, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListSummaries(ctx context.Context) ([]ArchiveSummary, error)
	Delete(ctx context.Context, id string) error
}

type archiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository constructs the archive repository.
func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

// Put overwrites any archived copy with the same id, so retrying an
// interrupted archive write is safe.
func (r *archiveRepository) Put(ctx context.Context, archived *models.ArchivedAssessment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(archived).Error
}

func (r *archiveRepository) GetByID(ctx context.Context, id string) (models.ArchivedAssessment, error) {
	var archived models.ArchivedAssessment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&archived).Error; err != nil {
		return models.ArchivedAssessment{}, err
	}
	return archived, nil
}

func (r *archiveRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ArchivedAssessment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *archiveRepository) ListSummaries(ctx context.Context) ([]ArchiveSummary, error) {
	var summaries []ArchiveSummary
	err := r.db.WithContext(ctx).
		Model(&models.ArchivedAssessment{}).
		Select("id", "full_name", "archived_at").
		Order("archived_at DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Delete removes the archived copy. Deleting a missing id is not an error.
func (r *archiveRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ArchivedAssessment{}).Error
}
