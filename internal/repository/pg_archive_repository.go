package repository

import (
	"context"
	"fmt"

	"parenting-server/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var _ ArchiveRepository = (*pgArchiveRepository)(nil)

const (
	upsertFinishedGameQuery = `
		INSERT INTO finished_games (session_id, child_name, outcome_code, outcome_title,
			happiness, growth, social, creativity, responsibility, failed_attempts, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO UPDATE SET
			child_name = EXCLUDED.child_name,
			outcome_code = EXCLUDED.outcome_code,
			outcome_title = EXCLUDED.outcome_title,
			happiness = EXCLUDED.happiness,
			growth = EXCLUDED.growth,
			social = EXCLUDED.social,
			creativity = EXCLUDED.creativity,
			responsibility = EXCLUDED.responsibility,
			failed_attempts = EXCLUDED.failed_attempts,
			finished_at = EXCLUDED.finished_at`

	listRecentFinishedGamesQuery = `
		SELECT session_id, child_name, outcome_code, outcome_title,
			happiness, growth, social, creativity, responsibility, failed_attempts, finished_at
		FROM finished_games
		ORDER BY finished_at DESC
		LIMIT $1`

	countByOutcomeQuery = `
		SELECT outcome_code, COUNT(*) AS total
		FROM finished_games
		GROUP BY outcome_code`
)

type outcomeCount struct {
	OutcomeCode domain.OutcomeCode `db:"outcome_code"`
	Total       int                `db:"total"`
}

type pgArchiveRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPgArchiveRepository создает архив итогов в PostgreSQL.
func NewPgArchiveRepository(db *pgxpool.Pool, logger *zap.Logger) ArchiveRepository {
	return &pgArchiveRepository{
		db:     db,
		logger: logger.Named("PgArchiveRepo"),
	}
}

func (r *pgArchiveRepository) Save(ctx context.Context, g domain.FinishedGame) error {
	_, err := r.db.Exec(ctx, upsertFinishedGameQuery,
		g.SessionID, g.ChildName, g.OutcomeCode, g.OutcomeTitle,
		g.Happiness, g.Growth, g.Social, g.Creativity, g.Responsibility,
		g.FailedAttempts, g.FinishedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save finished game", zap.Error(err), zap.String("sessionID", g.SessionID.String()))
		return fmt.Errorf("save finished game: %w", err)
	}
	r.logger.Debug("Finished game archived",
		zap.String("sessionID", g.SessionID.String()),
		zap.String("outcome", string(g.OutcomeCode)),
	)
	return nil
}

func (r *pgArchiveRepository) ListRecent(ctx context.Context, limit int) ([]domain.FinishedGame, error) {
	games := make([]domain.FinishedGame, 0)
	if err := pgxscan.Select(ctx, r.db, &games, listRecentFinishedGamesQuery, normalizeLimit(limit)); err != nil {
		r.logger.Error("Failed to list finished games", zap.Error(err))
		return nil, fmt.Errorf("list finished games: %w", err)
	}
	return games, nil
}

func (r *pgArchiveRepository) CountByOutcome(ctx context.Context) (map[domain.OutcomeCode]int, error) {
	var rows []outcomeCount
	if err := pgxscan.Select(ctx, r.db, &rows, countByOutcomeQuery); err != nil {
		return nil, fmt.Errorf("count finished games by outcome: %w", err)
	}
	counts := make(map[domain.OutcomeCode]int, len(rows))
	for _, row := range rows {
		counts[row.OutcomeCode] = row.Total
	}
	return counts, nil
}
