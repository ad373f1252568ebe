package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"parenting-server/internal/catalog"
	"parenting-server/internal/database"
	"parenting-server/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrintScenarios(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printScenarios(&buf))

	out := buf.String()
	assert.Contains(t, out, "AGES")
	for _, sc := range catalog.All() {
		assert.Contains(t, out, sc.Context)
	}
}

func TestPrintHistory(t *testing.T) {
	dbPath = filepath.Join(t.TempDir(), "history.db")
	db, archive, err := openArchive(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, printHistory(ctx, &buf, archive, 10))
	assert.Contains(t, buf.String(), "No finished games yet.")

	require.NoError(t, archive.Save(ctx, domain.FinishedGame{
		SessionID:      uuid.New(),
		ChildName:      "Mina",
		OutcomeCode:    domain.OutcomeArtist,
		OutcomeTitle:   "Creative Artist",
		Happiness:      60,
		Growth:         60,
		Social:         60,
		Creativity:     85,
		Responsibility: 40,
		FailedAttempts: 2,
		FinishedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))

	buf.Reset()
	require.NoError(t, printHistory(ctx, &buf, archive, 10))
	out := buf.String()
	assert.Contains(t, out, "Mina")
	assert.Contains(t, out, "Creative Artist")
	assert.Contains(t, out, "305")
	assert.Regexp(t, `Creative Artist\s+1`, out)
}

func TestMigrateArchive(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	m := database.NewSQLiteMigrator(db, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, migrateArchive(&buf, m, "version"))
	assert.Contains(t, buf.String(), "schema version 0")

	buf.Reset()
	require.NoError(t, migrateArchive(&buf, m, "up"))
	assert.Contains(t, buf.String(), "schema version 1 (dirty: false)")

	buf.Reset()
	require.NoError(t, migrateArchive(&buf, m, "down"))
	assert.Contains(t, buf.String(), "schema version 0")

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='finished_games'`).Scan(&tables))
	assert.Zero(t, tables)

	assert.Error(t, migrateArchive(&buf, m, "sideways"))
}
