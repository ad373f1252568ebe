//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"parenting-server/internal/database"
	"parenting-server/internal/domain"
	"parenting-server/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type StorageIntegrationSuite struct {
	suite.Suite
	pgContainer    *postgres.PostgresContainer
	redisContainer *tcredis.RedisContainer
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	archive        repository.ArchiveRepository
	sessions       repository.SessionRepository
}

func (s *StorageIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("parenting-test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Minute),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pool, err = database.ConnectPostgres(ctx, dsn, zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(database.NewPostgresMigrator(s.pool, zap.NewNop()).Up())
	s.archive = repository.NewPgArchiveRepository(s.pool, zap.NewNop())

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.redisContainer = redisContainer

	redisURL, err := redisContainer.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(redisURL)
	s.Require().NoError(err)
	s.redisClient = redis.NewClient(opts)
	s.sessions = repository.NewRedisSessionRepository(s.redisClient, time.Minute, zap.NewNop())
}

func (s *StorageIntegrationSuite) TearDownSuite() {
	ctx := context.Background()
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgContainer != nil {
		s.Require().NoError(s.pgContainer.Terminate(ctx))
	}
	if s.redisContainer != nil {
		s.Require().NoError(s.redisContainer.Terminate(ctx))
	}
}

func (s *StorageIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE finished_games")
	s.Require().NoError(err)
}

func TestStorageIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(StorageIntegrationSuite))
}

func (s *StorageIntegrationSuite) TestPgArchive_SaveListCount() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	a := finishedGame(domain.OutcomeCounselor, base.Add(-time.Hour))
	b := finishedGame(domain.OutcomeLeader, base)
	s.Require().NoError(s.archive.Save(ctx, a))
	s.Require().NoError(s.archive.Save(ctx, b))

	games, err := s.archive.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(b.SessionID, games[0].SessionID)
	s.Equal(domain.OutcomeCounselor, games[1].OutcomeCode)
	s.True(a.FinishedAt.Equal(games[1].FinishedAt))

	counts, err := s.archive.CountByOutcome(ctx)
	s.Require().NoError(err)
	s.Equal(map[domain.OutcomeCode]int{domain.OutcomeCounselor: 1, domain.OutcomeLeader: 1}, counts)
}

func (s *StorageIntegrationSuite) TestRedisSessions_RoundTrip() {
	ctx := context.Background()
	sc := domain.Scenario{Ages: domain.AgeRange{Min: 5, Max: 5}, Text: "toy", Context: "sharing"}
	ev := domain.Evaluation{
		Effects:      domain.Effects{domain.TraitSocial: 4},
		Feedback:     "nice",
		ResponseType: "empathetic",
	}
	session := &domain.Session{
		ID:                   uuid.New(),
		ChildName:            "Mina",
		Age:                  5,
		Traits:               domain.DefaultTraits(),
		Round:                1,
		Phase:                domain.PhaseInProgress,
		CurrentScenario:      &sc,
		CurrentScenarioIndex: 1,
		UsedScenarios:        []int{0},
		History:              []domain.RoundRecord{{Round: 1, Scenario: sc, Response: "r", Evaluation: ev, Age: 3}},
		LastEvaluation:       &ev,
		CreatedAt:            time.Now().UTC().Truncate(time.Second),
		UpdatedAt:            time.Now().UTC().Truncate(time.Second),
	}

	s.Require().NoError(s.sessions.Save(ctx, session))

	got, err := s.sessions.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ChildName, got.ChildName)
	s.Equal(session.UsedScenarios, got.UsedScenarios)
	s.Equal(4, got.History[0].Evaluation.Effects[domain.TraitSocial])
	s.Equal(sc, *got.CurrentScenario)

	ttl, err := s.redisClient.TTL(ctx, "parenting:session:"+session.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.sessions.Delete(ctx, session.ID))
	_, err = s.sessions.Get(ctx, session.ID)
	s.ErrorIs(err, domain.ErrSessionNotFound)
}
