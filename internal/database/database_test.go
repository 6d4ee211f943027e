package database

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/athlete-assessment-api/internal/models"
)

func TestConnectRedis(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client, err := ConnectRedis("redis://" + mini.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = ConnectRedis("")
	require.Error(t, err)

	_, err = ConnectRedis("not-a-url")
	require.Error(t, err)
}

func TestConnectRequiresAddress(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)

	_, err = ConnectNATS("", "test")
	require.Error(t, err)
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.True(t, db.Migrator().HasTable(&models.Assessment{}))
	require.True(t, db.Migrator().HasTable(&models.ArchivedAssessment{}))
	require.True(t, db.Migrator().HasTable(&models.AuditLog{}))
}
