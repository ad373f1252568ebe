package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	seed      int64
	childName string
	dbPath    string
	logFile   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "parentsim",
	Short: "Parenting simulation in the terminal",
	Long: `parentsim - raise a child from age 3 to 19 in eight situations.

Each answer is scored by a language model on five traits. After the last
round the final traits decide who your child grows up to be.

Run without arguments to start a game.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a new game",
	RunE:  runPlay,
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario catalog",
	RunE:  runScenarios,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently finished games",
	RunE:  runHistory,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the schema of the local archive",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all migrations",
	RunE:  runMigrate("up"),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations (drops the archive)",
	RunE:  runMigrate("down"),
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE:  runMigrate("version"),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", envOr("SQLITE_PATH", "parentsim.db"), "SQLite archive of finished games")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "parentsim.log", "Log file (the terminal is used by the game)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, c := range []*cobra.Command{rootCmd, playCmd} {
		c.Flags().Int64Var(&seed, "seed", 0, "Scenario selection seed (0 - random)")
		c.Flags().StringVar(&childName, "name", "", "Child's name")
	}
	historyCmd.Flags().Int("limit", 10, "Number of games to show")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(playCmd, scenariosCmd, historyCmd, migrateCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
