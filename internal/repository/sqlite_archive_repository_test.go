package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"parenting-server/internal/database"
	"parenting-server/internal/domain"
	"parenting-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func finishedGame(code domain.OutcomeCode, at time.Time) domain.FinishedGame {
	return domain.FinishedGame{
		SessionID:      uuid.New(),
		ChildName:      domain.DefaultChildName,
		OutcomeCode:    code,
		OutcomeTitle:   string(code),
		Happiness:      70,
		Growth:         50,
		Social:         60,
		Creativity:     55,
		Responsibility: 45,
		FailedAttempts: 1,
		FinishedAt:     at,
	}
}

func newSQLiteArchive(t *testing.T) repository.ArchiveRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewSQLiteMigrator(db, zap.NewNop()).Up())
	return repository.NewSQLiteArchiveRepository(db, zap.NewNop())
}

func TestSQLiteArchiveRepository(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteArchive(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older := finishedGame(domain.OutcomeOrdinary, base)
	newer := finishedGame(domain.OutcomeArtist, base.Add(time.Hour))
	third := finishedGame(domain.OutcomeOrdinary, base.Add(2*time.Hour))
	for _, g := range []domain.FinishedGame{older, newer, third} {
		require.NoError(t, repo.Save(ctx, g))
	}

	games, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, third.SessionID, games[0].SessionID)
	assert.Equal(t, newer.SessionID, games[1].SessionID)
	assert.Equal(t, domain.OutcomeArtist, games[1].OutcomeCode)
	assert.Equal(t, domain.DefaultTraits(), games[1].Traits())
	assert.True(t, newer.FinishedAt.Equal(games[1].FinishedAt))

	counts, err := repo.CountByOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.OutcomeCode]int{domain.OutcomeOrdinary: 2, domain.OutcomeArtist: 1}, counts)

	// Повторное сохранение перезаписывает запись.
	older.OutcomeCode = domain.OutcomeLeader
	require.NoError(t, repo.Save(ctx, older))
	counts, err = repo.CountByOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.OutcomeLeader])
	assert.Equal(t, 1, counts[domain.OutcomeOrdinary])
}

func TestSQLiteMigratorVersion(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "v.db"))
	require.NoError(t, err)
	defer db.Close()

	m := database.NewSQLiteMigrator(db, zap.NewNop())
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	require.NoError(t, m.Up())
	v, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}
