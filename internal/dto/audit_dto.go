package dto

import (
	"time"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

// AuditListRequest defines filters for reading the audit trail.
type AuditListRequest struct {
	Actions   []string `validate:"omitempty,dive,oneof=CREATED UPDATED DELETED RESTORED CORRECTED"`
	ActorID   string
	SubjectID string
	Limit     int `validate:"omitempty,min=1,max=500"`
	Offset    int `validate:"omitempty,min=0"`
}

// AuditEntryResponse serializes an audit trail entry.
type AuditEntryResponse struct {
	ID         uint      `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
	SubjectID  string    `json:"subject_id,omitempty"`
	ArchiveRef string    `json:"archive_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditListResponse wraps a page of audit entries.
type AuditListResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Total int64                `json:"total"`
}

// NewAuditEntryResponse converts a model into a DTO.
func NewAuditEntryResponse(entry models.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		Action:     entry.Action,
		Detail:     entry.Detail,
		SubjectID:  entry.SubjectID,
		ArchiveRef: entry.ArchiveRef,
		CreatedAt:  entry.CreatedAt,
	}
}
