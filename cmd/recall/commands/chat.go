// ABOUTME: Debug chat command running one full turn through the engine
// ABOUTME: Assembles the context and generates a reply with the LLM client
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soberpath/recall/internal/core"
)

var chatUser string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Run one chat turn (debug)",
		Long: `Run a single message through the full pipeline — classification,
frame storage, tracking, retrieval, profile analysis — then generate
and log a reply. Meant for inspecting engine behavior, not production.`,
		Args: cobra.ExactArgs(1),
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatUser, "user", "cli", "Messenger id of the user")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(args[0])
	if text == "" {
		return fmt.Errorf("no message provided")
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
	turn, err := engine.HandleTurn(cmd.Context(), chatUser, text)
	if err != nil {
		return fmt.Errorf("handling turn: %w", err)
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "--- turn %s ---\n", turn.TurnID)
		fmt.Fprintf(cmd.ErrOrStderr(), "frames stored: %d, retrieved: %d\n", len(turn.FrameIDs), len(turn.Frames))
		if turn.HelperPrompt != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", turn.HelperPrompt)
		}
		if len(turn.Archetypes) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "archetypes: %s\n", strings.Join(turn.Archetypes, ", "))
		}
	}

	systemPrompt := buildSystemPrompt(turn)
	reply, err := client.Respond(cmd.Context(), systemPrompt, turn.History, text)
	if err != nil {
		return fmt.Errorf("generating reply: %w", err)
	}

	if err := engine.LogReply(turn.UserID, reply); err != nil {
		return fmt.Errorf("logging reply: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// buildSystemPrompt stacks the personalization document and the
// retrieved memory context under the base instruction.
func buildSystemPrompt(turn *core.TurnContext) string {
	parts := []string{"Ты — спокойный собеседник и наставник для человека, который выздоравливает от зависимости. Отвечай на русском, тепло и без осуждения."}
	if turn.PersonalPrompt != "" {
		parts = append(parts, turn.PersonalPrompt)
	}
	if turn.HelperPrompt != "" {
		parts = append(parts, turn.HelperPrompt)
	}
	return strings.Join(parts, "\n\n")
}
