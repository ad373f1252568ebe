package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/rand"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"parenting-server/internal/catalog"
	"parenting-server/internal/config"
	"parenting-server/internal/database"
	"parenting-server/internal/domain"
	"parenting-server/internal/game"
	"parenting-server/internal/logger"
	"parenting-server/internal/repository"
	"parenting-server/internal/service"
	"parenting-server/internal/tui"
	"parenting-server/pkg/ai"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func logConfig(cfg *config.Config) logger.Config {
	lc := logger.Config{Level: "info", Encoding: "console", OutputPath: logFile}
	if cfg != nil {
		lc = cfg.Logger()
		lc.OutputPath = logFile
	}
	if verbose {
		lc.Level = "debug"
	}
	return lc
}

// openArchive открывает SQLite-архив и применяет миграции.
func openArchive(log *zap.Logger) (*sql.DB, repository.ArchiveRepository, error) {
	db, err := database.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := database.NewSQLiteMigrator(db, log).Up(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate archive: %w", err)
	}
	return db, repository.NewSQLiteArchiveRepository(db, log), nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, aiLog, closeLog, err := logger.NewPair(logConfig(cfg))
	if err != nil {
		return err
	}
	defer closeLog()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aiClient, err := ai.New(ctx, cfg.AI(), aiLog)
	if err != nil {
		return err
	}

	db, archive, err := openArchive(log)
	if err != nil {
		return err
	}
	defer db.Close()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("Starting game", zap.Int64("seed", seed), zap.String("provider", cfg.AIProvider))

	svc := service.NewGameService(
		repository.NewMemorySessionRepository(0, log),
		service.NewResponseEvaluator(aiClient, log),
		catalog.NewSelector(rand.New(rand.NewSource(seed))),
		service.Options{Archive: archive, MaxResponseLength: cfg.MaxResponseLength},
		log,
	)

	p := tea.NewProgram(tui.New(ctx, svc, childName), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	return printScenarios(cmd.OutOrStdout())
}

func printScenarios(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAGES\tCONTEXT\tSITUATION")
	for i, sc := range catalog.All() {
		fmt.Fprintf(tw, "%d\t%d-%d\t%s\t%s\n", i, sc.Ages.Min, sc.Ages.Max, sc.Context, sc.Text)
	}
	return tw.Flush()
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	log, err := logger.New(logConfig(nil))
	if err != nil {
		return err
	}
	defer log.Sync()

	db, archive, err := openArchive(log)
	if err != nil {
		return err
	}
	defer db.Close()

	return printHistory(cmd.Context(), cmd.OutOrStdout(), archive, limit)
}

func printHistory(ctx context.Context, w io.Writer, archive repository.ArchiveRepository, limit int) error {
	games, err := archive.ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(w, "No finished games yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tCHILD\tOUTCOME\tTOTAL\tRETRIES")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
			g.FinishedAt.Local().Format("2006-01-02 15:04"), g.ChildName, g.OutcomeTitle, g.Traits().Sum(), g.FailedAttempts)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats, err := archive.CountByOutcome(ctx)
	if err != nil {
		return err
	}
	codes := make([]domain.OutcomeCode, 0, len(stats))
	for code := range stats {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	fmt.Fprintln(w)
	for _, code := range codes {
		title := string(code)
		if o, ok := game.OutcomeByCode(code); ok {
			title = o.Title
		}
		fmt.Fprintf(w, "%-24s %d\n", title, stats[code])
	}
	return nil
}

func runMigrate(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		log, err := logger.New(logConfig(nil))
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		return migrateArchive(cmd.OutOrStdout(), database.NewSQLiteMigrator(db, log), action)
	}
}

func migrateArchive(w io.Writer, m *database.Migrator, action string) error {
	switch action {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
	case "down":
		if err := m.Down(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
