package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

func TestAuditServiceAppendSanitizesAndDefaultsActor(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()

	stores.audit.Append(ctx, AuditEntry{
		Actor:     AuditActor{Name: "<i>O'Brien</i>"},
		Action:    "deleted",
		Detail:    "Deleted individual ABC (Anne <script>x</script>O'Neil) [docId=abc]",
		SubjectID: "abc",
	})

	entries := stores.auditEntries(t)
	require.Len(t, entries, 1)
	require.Equal(t, "system", entries[0].ActorID)
	require.Equal(t, "O'Brien", entries[0].ActorName)
	require.Equal(t, models.AuditActionDeleted, entries[0].Action)
	require.Equal(t, "Deleted individual ABC (Anne O'Neil) [docId=abc]", entries[0].Detail)
}

func TestAuditServiceAppendSwallowsFailures(t *testing.T) {
	stores := setupStores(t)
	failing := NewAuditService(failingAuditRepo{stores.auditLogs}, stores.validate, zerolog.Nop())

	require.NotPanics(t, func() {
		failing.Append(context.Background(), AuditEntry{Actor: testActor(), Action: models.AuditActionCreated, Detail: "x"})
	})
	require.Empty(t, stores.auditEntries(t))
}

func TestAuditServiceAppendIgnoresUnknownActions(t *testing.T) {
	stores := setupStores(t)

	stores.audit.Append(context.Background(), AuditEntry{Actor: testActor(), Action: "PURGED", Detail: "x"})
	require.Empty(t, stores.auditEntries(t))
}

func TestAuditServiceListFilters(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()

	stores.audit.Append(ctx, AuditEntry{Actor: testActor(), Action: models.AuditActionCreated, Detail: "a", SubjectID: "one"})
	stores.audit.Append(ctx, AuditEntry{Actor: testActor(), Action: models.AuditActionDeleted, Detail: "b", SubjectID: "one", ArchiveRef: "one"})
	stores.audit.Append(ctx, AuditEntry{Actor: AuditActor{ID: "coach-2"}, Action: models.AuditActionCreated, Detail: "c", SubjectID: "two"})

	all, err := stores.audit.List(ctx, dto.AuditListRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Total)
	require.Len(t, all.Items, 3)

	deleted, err := stores.audit.List(ctx, dto.AuditListRequest{Actions: []string{models.AuditActionDeleted}})
	require.NoError(t, err)
	require.Len(t, deleted.Items, 1)
	require.Equal(t, "one", deleted.Items[0].ArchiveRef)

	bySubject, err := stores.audit.List(ctx, dto.AuditListRequest{SubjectID: "one"})
	require.NoError(t, err)
	require.Equal(t, int64(2), bySubject.Total)

	byActor, err := stores.audit.List(ctx, dto.AuditListRequest{ActorID: "coach-2"})
	require.NoError(t, err)
	require.Len(t, byActor.Items, 1)
	require.Equal(t, "two", byActor.Items[0].SubjectID)

	_, err = stores.audit.List(ctx, dto.AuditListRequest{Actions: []string{"PURGED"}})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = stores.audit.List(ctx, dto.AuditListRequest{Limit: 1000})
	require.ErrorAs(t, err, &validationErrs)
}
