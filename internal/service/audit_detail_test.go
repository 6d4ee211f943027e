package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

func TestFormatDetail(t *testing.T) {
	assessment := models.Assessment{ID: "3f2a9c1e-77aa-4b1e-9a3f-0c1d2e3f4a5b", FullName: "Jane Doe"}

	require.Equal(t,
		"Deleted individual 3F2A9C1E (Jane Doe) [docId=3f2a9c1e-77aa-4b1e-9a3f-0c1d2e3f4a5b]",
		FormatDetail(models.AuditActionDeleted, assessment, assessment.ID),
	)
	require.Equal(t,
		"Created individual 3F2A9C1E (Jane Doe)",
		FormatDetail(models.AuditActionCreated, assessment, ""),
	)
}

func TestParseDetailRoundTrip(t *testing.T) {
	assessment := models.Assessment{ID: "abc12345-0000", FullName: "Ana Souza (U17)"}
	detail := FormatDetail(models.AuditActionDeleted, assessment, assessment.ID)

	id, ok := ParseDocID(detail)
	require.True(t, ok)
	require.Equal(t, assessment.ID, id)

	name, ok := ParseSubjectName(detail)
	require.True(t, ok)
	require.Equal(t, "Ana Souza (U17)", name)
}

func TestParseDetailLegacyAndMalformed(t *testing.T) {
	cases := []struct {
		detail string
		id     string
		name   string
	}{
		{detail: "Deleted individual ABC12345 (Jane Doe)", name: "Jane Doe"},
		{detail: "Deleted individual ABC12345 (Jane Doe)  [docId=xyz]", id: "xyz", name: "Jane Doe"},
		{detail: "Deleted something else"},
		{detail: "Deleted individual ABC12345 ()"},
		{detail: "[docId=]"},
	}

	for _, tc := range cases {
		t.Run(tc.detail, func(t *testing.T) {
			id, ok := ParseDocID(tc.detail)
			require.Equal(t, tc.id != "", ok)
			require.Equal(t, tc.id, id)

			name, ok := ParseSubjectName(tc.detail)
			require.Equal(t, tc.name != "", ok)
			require.Equal(t, tc.name, name)
		})
	}
}

func TestArchiveReferencePrefersColumn(t *testing.T) {
	ref, ok := archiveReference(models.AuditLog{ArchiveRef: "column", Detail: "x [docId=token]"})
	require.True(t, ok)
	require.Equal(t, "column", ref)

	ref, ok = archiveReference(models.AuditLog{Detail: "x [docId=token]"})
	require.True(t, ok)
	require.Equal(t, "token", ref)

	_, ok = archiveReference(models.AuditLog{Detail: "x"})
	require.False(t, ok)
}
