package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

func TestArchiveRepositoryPutOverwritesAndSummarizes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArchiveRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	first := models.ArchivedAssessment{
		Assessment: models.Assessment{ID: "a1", FullName: "Jane Doe", Status: models.StatusPending, CreatedAt: now, UpdatedAt: now},
		ArchivedAt: now.Add(-time.Minute),
	}
	second := models.ArchivedAssessment{
		Assessment: models.Assessment{ID: "a2", FullName: "John Roe", Status: models.StatusPending, CreatedAt: now, UpdatedAt: now},
		ArchivedAt: now,
	}
	require.NoError(t, repo.Put(ctx, &first))
	require.NoError(t, repo.Put(ctx, &second))

	first.ArchivedBy = "admin-2"
	require.NoError(t, repo.Put(ctx, &first))

	stored, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "admin-2", stored.ArchivedBy)
	require.Equal(t, "Jane Doe", stored.FullName)

	summaries, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "a2", summaries[0].ID)
	require.Equal(t, "John Roe", summaries[0].FullName)
	require.Equal(t, "a1", summaries[1].ID)

	require.NoError(t, repo.Delete(ctx, "a1"))
	exists, err := repo.Exists(ctx, "a1")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.GetByID(ctx, "a1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
