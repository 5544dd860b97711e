// ABOUTME: CLI command to rebuild a user's personalization document
// ABOUTME: Regenerates all sections from stored profile data
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/soberpath/recall/internal/core"
)

var rebuildShow bool

// NewRebuildCmd creates the rebuild command
func NewRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild [user-id]",
		Short: "Rebuild a user's personalization document",
		Args:  cobra.ExactArgs(1),
		RunE:  runRebuild,
	}

	cmd.Flags().BoolVar(&rebuildShow, "show", false, "Print the rebuilt document")

	return cmd
}

func runRebuild(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

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

	engine := core.NewEngine(store, client, cfg, log)
	document, err := engine.RebuildPersonalization(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("rebuilding personalization: %w", err)
	}

	if rebuildShow {
		fmt.Fprintln(cmd.OutOrStdout(), document)
	} else if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Rebuilt personalization for user %d (%d bytes)\n", userID, len(document))
	}
	return nil
}
