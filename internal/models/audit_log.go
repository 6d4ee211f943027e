package models

import "time"

// Audit actions recorded for mutating operations.
const (
	AuditActionCreated   = "CREATED"
	AuditActionUpdated   = "UPDATED"
	AuditActionDeleted   = "DELETED"
	AuditActionRestored  = "RESTORED"
	AuditActionCorrected = "CORRECTED"
)

// AuditLog is an append-only trail entry. Rows are never updated or deleted.
//
// ArchiveRef is a weak back-reference to an archived assessment. Entries
// written before the column existed carry the reference only inside Detail
// as a "[docId=...]" token.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    string    `gorm:"size:128;index" json:"actor_id"`
	ActorName  string    `gorm:"size:255" json:"actor_name"`
	Action     string    `gorm:"size:16;not null;index" json:"action"`
	Detail     string    `gorm:"type:text" json:"detail"`
	SubjectID  string    `gorm:"size:36;index" json:"subject_id"`
	ArchiveRef string    `gorm:"size:36;index" json:"archive_ref"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
