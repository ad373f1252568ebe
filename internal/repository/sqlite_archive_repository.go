package repository

import (
	"context"
	"database/sql"
	"fmt"

	"parenting-server/internal/domain"

	"github.com/georgysavva/scany/v2/sqlscan"
	"go.uber.org/zap"
)

var _ ArchiveRepository = (*sqliteArchiveRepository)(nil)

const (
	sqliteUpsertFinishedGameQuery = `
		INSERT INTO finished_games (session_id, child_name, outcome_code, outcome_title,
			happiness, growth, social, creativity, responsibility, failed_attempts, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			child_name = excluded.child_name,
			outcome_code = excluded.outcome_code,
			outcome_title = excluded.outcome_title,
			happiness = excluded.happiness,
			growth = excluded.growth,
			social = excluded.social,
			creativity = excluded.creativity,
			responsibility = excluded.responsibility,
			failed_attempts = excluded.failed_attempts,
			finished_at = excluded.finished_at`

	sqliteListRecentQuery = `
		SELECT session_id, child_name, outcome_code, outcome_title,
			happiness, growth, social, creativity, responsibility, failed_attempts, finished_at
		FROM finished_games
		ORDER BY finished_at DESC
		LIMIT ?`
)

type sqliteArchiveRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteArchiveRepository создает локальный архив итогов (используется CLI).
func NewSQLiteArchiveRepository(db *sql.DB, logger *zap.Logger) ArchiveRepository {
	return &sqliteArchiveRepository{
		db:     db,
		logger: logger.Named("SQLiteArchiveRepo"),
	}
}

func (r *sqliteArchiveRepository) Save(ctx context.Context, g domain.FinishedGame) error {
	_, err := r.db.ExecContext(ctx, sqliteUpsertFinishedGameQuery,
		g.SessionID.String(), g.ChildName, string(g.OutcomeCode), g.OutcomeTitle,
		g.Happiness, g.Growth, g.Social, g.Creativity, g.Responsibility,
		g.FailedAttempts, g.FinishedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to save finished game", zap.Error(err), zap.String("sessionID", g.SessionID.String()))
		return fmt.Errorf("save finished game: %w", err)
	}
	return nil
}

func (r *sqliteArchiveRepository) ListRecent(ctx context.Context, limit int) ([]domain.FinishedGame, error) {
	games := make([]domain.FinishedGame, 0)
	if err := sqlscan.Select(ctx, r.db, &games, sqliteListRecentQuery, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("list finished games: %w", err)
	}
	return games, nil
}

func (r *sqliteArchiveRepository) CountByOutcome(ctx context.Context) (map[domain.OutcomeCode]int, error) {
	var rows []outcomeCount
	if err := sqlscan.Select(ctx, r.db, &rows, countByOutcomeQuery); err != nil {
		return nil, fmt.Errorf("count finished games by outcome: %w", err)
	}
	counts := make(map[domain.OutcomeCode]int, len(rows))
	for _, row := range rows {
		counts[row.OutcomeCode] = row.Total
	}
	return counts, nil
}
