package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrAssessmentNotFound indicates the active store holds no record for the id.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrArchiveNotFound indicates no archived copy resolves for a restore.
	ErrArchiveNotFound = errors.New("archived assessment not found")
	// ErrAmbiguousMatch indicates a name fallback matched more than one archived record.
	ErrAmbiguousMatch = errors.New("archived assessment match is ambiguous")
	// ErrStoreUnavailable wraps I/O failures against any store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAuditWriteFailure marks an audit append that could not be persisted.
	ErrAuditWriteFailure = errors.New("audit write failed")
	// ErrAuditEntryNotFound indicates the referenced audit entry does not exist.
	ErrAuditEntryNotFound = errors.New("audit entry not found")
	// ErrNotDeletionEntry indicates a restore was requested through a non DELETED entry.
	ErrNotDeletionEntry = errors.New("audit entry is not a deletion")
	// ErrUnknownDomain indicates the domain is not registered.
	ErrUnknownDomain = errors.New("unknown assessment domain")
	// ErrInvalidDomainPayload indicates the domain blob failed schema validation.
	ErrInvalidDomainPayload = errors.New("invalid domain payload")
)

// storeError classifies a repository error. Record-not-found is replaced by
// notFound; anything else becomes ErrStoreUnavailable.
func storeError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
