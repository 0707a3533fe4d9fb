package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foreningshub/backend/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAll(db))

	for _, table := range []string{"users", "associations", "association_members", "members", "invitations"} {
		require.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "app", Name: "foreningshub", Password: "s3cret"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "dbname=foreningshub")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "app", Password: "pw", Name: "foreningshub"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dsn, "app:pw@tcp(127.0.0.1:3306)/foreningshub?"))
	require.Contains(t, dsn, "parseTime=True")
}

func TestMigratedInvitationTokenIsUnique(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	association := models.Association{
		BaseModel: models.BaseModel{ID: "a1"},
		Name:      "a1",
		Slug:      "a1",
	}
	require.NoError(t, db.Create(&association).Error)

	first := models.Invitation{AssociationID: "a1", Email: "a@x.se", Token: "tok-1"}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Invitation{AssociationID: "a1", Email: "b@x.se", Token: "tok-1"}
	require.Error(t, db.Create(&dup).Error)
}
