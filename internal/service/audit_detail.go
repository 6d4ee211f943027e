package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

var (
	docIDPattern   = regexp.MustCompile(`\[docId=([^\]\s]+)\]`)
	subjectPattern = regexp.MustCompile(`individual\s+\S+\s+\((.+)\)\s*$`)
)

// auditVerbs maps actions onto the verb that opens a detail string.
var auditVerbs = map[string]string{
	models.AuditActionCreated:   "Created",
	models.AuditActionUpdated:   "Updated",
	models.AuditActionDeleted:   "Deleted",
	models.AuditActionRestored:  "Restored",
	models.AuditActionCorrected: "Corrected",
}

// FormatDetail renders "<Verb> individual <shortId> (<FullName>) [docId=<archiveId>]".
// The token is omitted when archiveID is empty.
func FormatDetail(action string, assessment models.Assessment, archiveID string) string {
	verb, ok := auditVerbs[action]
	if !ok {
		verb = action
	}

	detail := fmt.Sprintf("%s individual %s (%s)", verb, assessment.ShortID(), assessment.FullName)
	if archiveID != "" {
		detail += fmt.Sprintf(" [docId=%s]", archiveID)
	}
	return detail
}

// ParseDocID extracts the archive id from a "[docId=...]" token.
func ParseDocID(detail string) (string, bool) {
	match := docIDPattern.FindStringSubmatch(detail)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// ParseSubjectName extracts the display name embedded in a detail string.
func ParseSubjectName(detail string) (string, bool) {
	stripped := strings.TrimSpace(docIDPattern.ReplaceAllString(detail, ""))
	match := subjectPattern.FindStringSubmatch(stripped)
	if len(match) < 2 {
		return "", false
	}
	name := strings.TrimSpace(match[1])
	return name, name != ""
}

// archiveReference prefers the explicit column and falls back to the token
// carried by entries written before the column existed.
func archiveReference(entry models.AuditLog) (string, bool) {
	if ref := strings.TrimSpace(entry.ArchiveRef); ref != "" {
		return ref, true
	}
	return ParseDocID(entry.Detail)
}
