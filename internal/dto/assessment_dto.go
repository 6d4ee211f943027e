package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/athlete-assessment-api/internal/completeness"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

// AssessmentCreateRequest opens a new record, optionally with the first domain saves.
type AssessmentCreateRequest struct {
	FullName string                            `json:"full_name" validate:"required,min=2,max=255"`
	Domains  map[string]map[string]interface{} `json:"domains" validate:"omitempty,dive,keys,required,endkeys"`
}

// DomainSaveRequest carries the raw form data of one domain section save.
type DomainSaveRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

// AssessmentListRequest defines filters for listing active assessments.
type AssessmentListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string `validate:"omitempty,oneof=pending in_progress completed"`
}

// DomainProgress reports the completeness of one domain.
type DomainProgress struct {
	Status  string   `json:"status"`
	Filled  int      `json:"filled"`
	Total   int      `json:"total"`
	Missing []string `json:"missing"`
}

// AssessmentResponse serializes an assessment with its derived status cache.
type AssessmentResponse struct {
	ID             string                    `json:"id"`
	ShortID        string                    `json:"short_id"`
	FullName       string                    `json:"full_name"`
	Status         string                    `json:"status"`
	DomainStatuses map[string]string         `json:"domain_statuses"`
	Progress       map[string]DomainProgress `json:"progress"`
	Domains        map[string]interface{}    `json:"domains"`
	CreatedBy      string                    `json:"created_by"`
	UpdatedBy      string                    `json:"updated_by"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// AssessmentListResponse wraps a paginated assessment response.
type AssessmentListResponse struct {
	Items      []AssessmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// RecomputeResponse reports whether a stored status cache had drifted.
type RecomputeResponse struct {
	Assessment AssessmentResponse `json:"assessment"`
	Corrected  bool               `json:"corrected"`
	Previous   string             `json:"previous_status"`
}

// RecomputeSummary aggregates a sweep over every active assessment.
type RecomputeSummary struct {
	Scanned   int      `json:"scanned"`
	Corrected int      `json:"corrected"`
	IDs       []string `json:"corrected_ids"`
}

// NewAssessmentResponse converts a model into a DTO. Progress counts come
// from the raw blobs; statuses come from the cache written alongside them.
func NewAssessmentResponse(model models.Assessment, registry *completeness.Registry) AssessmentResponse {
	response := AssessmentResponse{
		ID:             model.ID,
		ShortID:        model.ShortID(),
		FullName:       model.FullName,
		Status:         model.Status,
		DomainStatuses: stringMapFromJSON(model.DomainStatuses),
		Progress:       map[string]DomainProgress{},
		Domains:        jsonMapToPlain(model.Domains),
		CreatedBy:      model.CreatedBy,
		UpdatedBy:      model.UpdatedBy,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if registry != nil {
		summary := registry.Summarize(response.Domains)
		for domain, result := range summary.Domains {
			response.Progress[string(domain)] = DomainProgress{
				Status:  string(result.Status),
				Filled:  result.Filled,
				Total:   result.Total,
				Missing: result.Missing,
			}
		}
	}

	return response
}

func stringMapFromJSON(data datatypes.JSONMap) map[string]string {
	result := make(map[string]string, len(data))
	for key, raw := range data {
		if value, ok := raw.(string); ok {
			result[key] = value
		}
	}
	return result
}

func jsonMapToPlain(data datatypes.JSONMap) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(data)
}
