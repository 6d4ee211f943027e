package dto

import "time"

// Lifecycle states reported for an assessment identifier.
const (
	LifecycleActive     = "active"
	LifecycleArchived   = "archived"
	LifecycleDuplicated = "duplicated"
	LifecycleMissing    = "missing"
)

// ArchiveResult describes the outcome of a soft delete.
type ArchiveResult struct {
	ID        string `json:"id"`
	ArchiveID string `json:"archive_id"`
	State     string `json:"state"`
}

// RestorableEntry is a DELETED audit entry whose archived copy still exists.
// Ambiguous entries matched several archived records by name and cannot be
// restored through the entry.
type RestorableEntry struct {
	EntryID    uint      `json:"entry_id"`
	ArchiveID  string    `json:"archive_id,omitempty"`
	FullName   string    `json:"full_name"`
	Detail     string    `json:"detail"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	DeletedAt  time.Time `json:"deleted_at"`
	Resolution string    `json:"resolution"`
	Ambiguous  bool      `json:"ambiguous"`
	Candidates []string  `json:"candidates,omitempty"`
}

// RestorableListResponse wraps the restorable entries.
type RestorableListResponse struct {
	Items    []RestorableEntry `json:"items"`
	CacheHit bool              `json:"cache_hit"`
}

// LifecycleStateResponse reports where an identifier currently lives.
type LifecycleStateResponse struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Active   bool   `json:"active"`
	Archived bool   `json:"archived"`
}
