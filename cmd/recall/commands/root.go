// ABOUTME: Root CLI command with global flags and subcommand wiring
// ABOUTME: Builds shared storage, config, and LLM client for subcommands
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soberpath/recall/internal/config"
	"github.com/soberpath/recall/internal/llm"
	"github.com/soberpath/recall/internal/storage/sqlite"
)

var (
	verbose bool
	quiet   bool
	dbPath  string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Contextual memory engine for a recovery-support assistant",
		Long: `recall manages per-user conversational memory: classified frames,
topic blocks, semantic retrieval, theme tracking, and the generated
personalization document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: XDG data dir)")

	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewSeedCoreCmd())
	cmd.AddCommand(NewRebuildCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewStatsCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds the CLI logger honoring the verbosity flags
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// loadEnvironment loads .env and the application config
func loadEnvironment() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openStorage opens the database configured for this invocation
func openStorage(cfg *config.Config) (*sqlite.Storage, error) {
	store, err := sqlite.NewStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

// newLLMClient builds the OpenAI client from config
func newLLMClient(cfg *config.Config, log zerolog.Logger) (*llm.Client, error) {
	client, err := llm.NewClient(llm.FromConfig(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}
	return client, nil
}
