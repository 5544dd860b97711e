// ABOUTME: CLI command showing memory statistics for a user
// ABOUTME: Frame counts, tracked themes, block catalog, core seeding status
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [user-id]",
		Short: "Show memory statistics",
		Long:  `Show stored frame counts, tracking state, and block catalog for a user.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	cfg, err := loadEnvironment()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := store.Users.GetByID(userID)
	if err != nil {
		return err
	}

	frames, err := store.Frames.CountForUser(userID)
	if err != nil {
		return err
	}
	state, err := store.Tracking.Get(userID)
	if err != nil {
		return err
	}
	blocks, err := store.Blocks.All()
	if err != nil {
		return err
	}
	coreCount, err := store.Embeddings.CoreCount()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User:       %d (%s)\n", user.ID, user.MessengerID)
	fmt.Fprintf(out, "Frames:     %d\n", frames)
	fmt.Fprintf(out, "Blocks:     %d\n", len(blocks))
	fmt.Fprintf(out, "Candidates: %d\n", len(state.Candidates))
	fmt.Fprintf(out, "Confirmed:  %d\n", len(state.Confirmed))
	if len(state.Archetypes) > 0 {
		fmt.Fprintf(out, "Archetypes: %s\n", strings.Join(state.Archetypes, ", "))
	}
	if len(state.MetaFlags) > 0 {
		fmt.Fprintf(out, "Flags:      %s\n", strings.Join(state.MetaFlags, ", "))
	}
	fmt.Fprintf(out, "Core:       %d chunks\n", coreCount)
	return nil
}
