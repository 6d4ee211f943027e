package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

// AssessmentFilter narrows active assessment queries.
type AssessmentFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}

// AssessmentRepository is the active record store.
type AssessmentRepository interface {
	Put(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id string) (models.Assessment, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, int64, error)
	Delete(ctx context.Context, id string) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs the active assessment repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// Put writes the assessment verbatim, replacing any row with the same id.
func (r *assessmentRepository) Put(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(assessment).Error
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assessment).Error; err != nil {
		return models.Assessment{}, err
	}
	return assessment, nil
}

func (r *assessmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Assessment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *assessmentRepository) List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assessment{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(full_name) LIKE ?", like)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var assessments []models.Assessment
	if err := query.Order("updated_at DESC").Order("id").Find(&assessments).Error; err != nil {
		return nil, 0, err
	}

	return assessments, total, nil
}

// Delete removes the active copy. Deleting a missing id is not an error.
func (r *assessmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Assessment{}).Error
}
