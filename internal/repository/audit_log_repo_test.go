package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

func TestAuditLogRepositoryListFiltersByActionsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	entries := []models.AuditLog{
		{ActorID: "u1", Action: models.AuditActionCreated, Detail: "Created individual A1 (Jane Doe)", CreatedAt: base},
		{ActorID: "u1", Action: models.AuditActionDeleted, Detail: "Deleted individual A1 (Jane Doe)", CreatedAt: base.Add(time.Minute)},
		{ActorID: "u2", Action: models.AuditActionRestored, Detail: "Restored individual A1 (Jane Doe)", CreatedAt: base.Add(2 * time.Minute)},
		{ActorID: "u2", Action: models.AuditActionDeleted, Detail: "Deleted individual B2 (John Roe)", CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	deleted, total, err := repo.List(ctx, AuditLogFilter{Actions: []string{models.AuditActionDeleted}})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "Deleted individual B2 (John Roe)", deleted[0].Detail)

	mixed, total, err := repo.List(ctx, AuditLogFilter{Actions: []string{models.AuditActionDeleted, models.AuditActionRestored}, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, mixed, 2)
	require.Equal(t, models.AuditActionDeleted, mixed[0].Action)
	require.Equal(t, models.AuditActionRestored, mixed[1].Action)

	byActor, _, err := repo.List(ctx, AuditLogFilter{ActorID: "u1"})
	require.NoError(t, err)
	require.Len(t, byActor, 2)

	fetched, err := repo.GetByID(ctx, entries[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.AuditActionCreated, fetched.Action)
}
