package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
)

// Resolution methods reported for restorable entries.
const (
	resolutionReference   = "reference"
	resolutionName        = "name"
	resolutionArchiveOnly = "archive"
)

// archiveIndex is one snapshot of the archive store used to reconcile
// DELETED audit entries with archived copies.
type archiveIndex struct {
	summaries []repository.ArchiveSummary
	names     map[string]string
	byName    map[string][]string
}

type archiveResolution struct {
	ArchiveID  string
	Method     string
	Name       string
	Candidates []string
}

func newArchiveIndex(summaries []repository.ArchiveSummary) archiveIndex {
	index := archiveIndex{
		summaries: summaries,
		names:     make(map[string]string, len(summaries)),
		byName:    make(map[string][]string, len(summaries)),
	}
	for _, summary := range summaries {
		index.names[summary.ID] = summary.FullName
		name := strings.TrimSpace(summary.FullName)
		if name != "" {
			index.byName[name] = append(index.byName[name], summary.ID)
		}
	}
	return index
}

// resolve finds the archived copy an entry refers to. A reference, when
// present, is authoritative and never falls back to the name. The name
// fallback resolves only on exactly one match; several matches return
// ErrAmbiguousMatch with the candidates, none returns ErrArchiveNotFound.
func (idx archiveIndex) resolve(entry models.AuditLog) (archiveResolution, error) {
	if ref, ok := archiveReference(entry); ok {
		if _, exists := idx.names[ref]; !exists {
			return archiveResolution{}, ErrArchiveNotFound
		}
		return archiveResolution{ArchiveID: ref, Method: resolutionReference, Name: idx.names[ref]}, nil
	}

	name, ok := ParseSubjectName(entry.Detail)
	if !ok {
		return archiveResolution{}, ErrArchiveNotFound
	}

	candidates := idx.byName[name]
	switch len(candidates) {
	case 0:
		return archiveResolution{Name: name}, ErrArchiveNotFound
	case 1:
		return archiveResolution{ArchiveID: candidates[0], Method: resolutionName, Name: name}, nil
	default:
		return archiveResolution{
			Method:     resolutionName,
			Name:       name,
			Candidates: append([]string(nil), candidates...),
		}, ErrAmbiguousMatch
	}
}

// fingerprint identifies the snapshot's content. Any archived copy added,
// removed, renamed or re-archived yields a different value.
func (idx archiveIndex) fingerprint() string {
	keys := make([]string, 0, len(idx.summaries))
	for _, summary := range idx.summaries {
		keys = append(keys, summary.ID+"\x1f"+summary.FullName+"\x1f"+summary.ArchivedAt.UTC().Format(time.RFC3339Nano))
	}
	sort.Strings(keys)

	hash := sha256.New()
	for _, key := range keys {
		hash.Write([]byte(key))
		hash.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hash.Sum(nil))
}
