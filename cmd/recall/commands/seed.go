// ABOUTME: CLI command to seed the core knowledge vector collection
// ABOUTME: Embeds the fixed chunk catalog and stores it once
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soberpath/recall/internal/core"
)

var seedForce bool

// NewSeedCoreCmd creates the seed-core command
func NewSeedCoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-core",
		Short: "Seed the core knowledge collection",
		Long: `Embed and store the fixed core knowledge chunks the assistant
retrieves alongside user memory. A populated collection is left
untouched unless --force is given.`,
		RunE: runSeedCore,
	}

	cmd.Flags().BoolVar(&seedForce, "force", false, "Re-embed and overwrite existing chunks")

	return cmd
}

func runSeedCore(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := newLLMClient(cfg, log)
	if err != nil {
		return err
	}

	seeded, err := core.SeedCore(cmd.Context(), store, client, seedForce, log)
	if err != nil {
		return fmt.Errorf("seeding core collection: %w", err)
	}

	if !quiet {
		if seeded == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Core collection already seeded (use --force to overwrite)")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d core chunks\n", seeded)
		}
	}
	return nil
}
