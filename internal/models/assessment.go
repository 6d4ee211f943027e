package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Completion statuses shared by the per-domain and global status caches.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Assessment is the active record for one assessed individual.
//
// Domains holds the raw form data keyed by domain name. DomainStatuses and
// Status are derived from Domains on every write and are never read back as
// input.
type Assessment struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	FullName       string            `gorm:"size:255;not null;index" json:"full_name"`
	Status         string            `gorm:"size:16;not null;index" json:"status"`
	DomainStatuses datatypes.JSONMap `gorm:"type:json" json:"domain_statuses"`
	Domains        datatypes.JSONMap `gorm:"type:json" json:"domains"`
	CreatedBy      string            `gorm:"size:128" json:"created_by"`
	UpdatedBy      string            `gorm:"size:128" json:"updated_by"`
	CreatedAt      time.Time         `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// ArchivedAssessment is a verbatim copy of a soft-deleted Assessment stored
// under the same identifier. Its presence alone decides restorability.
type ArchivedAssessment struct {
	Assessment `gorm:"embedded"`
	ArchivedAt time.Time `gorm:"autoCreateTime:false;index" json:"archived_at"`
	ArchivedBy string    `gorm:"size:128" json:"archived_by"`
}

// TableName keeps archived copies in their own table.
func (ArchivedAssessment) TableName() string {
	return "archived_assessments"
}

// ShortID returns the abbreviated identifier used in human readable audit details.
func (a Assessment) ShortID() string {
	id := a.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
