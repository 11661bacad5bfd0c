package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mathtutor/internal/domain"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost:5432/db"))
	assert.True(t, IsPostgres("postgresql://localhost/db"))
	assert.False(t, IsPostgres("tutor.db"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	db, err := Connect("file:migrate_test?mode=memory&cache=shared", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), db, zap.NewNop()))

	for _, m := range domain.Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_init.sql", entries[0].Name())
}
