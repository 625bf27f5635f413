package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/closure"
	"github.com/steveyegge/handoff/internal/lockfile"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/ui"
)

var blockReason string

var blockCmd = &cobra.Command{
	Use:   "block <handoff-id>",
	Short: "Block a handoff and bounce a blocker handoff back to its origin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]

		reason := strings.TrimSpace(blockReason)
		if reason == "" {
			if jsonOutput {
				return fmt.Errorf("--reason is required with --json")
			}
			var err error
			reason, err = promptBlockReason(handoffID)
			if err != nil {
				return err
			}
			reason = strings.TrimSpace(reason)
		}
		if reason == "" {
			return fmt.Errorf("a blocker reason is required")
		}

		lock, err := lockfile.Acquire(plan.CanonicalPath(handoffDir(), handoffID))
		if err != nil {
			if errors.Is(err, lockfile.ErrLockBusy) {
				return fmt.Errorf("handoff %s is being updated by another process", handoffID)
			}
			return err
		}
		defer lock.Release()

		engine := closure.NewEngine(handoffDir(), rootDir, cfg.Repo)
		result, err := engine.Block(cmd.Context(), handoffID, reason)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(result)
			return nil
		}

		fmt.Printf("%s %s blocked\n", ui.RenderFail(ui.IconFail), ui.RenderAccent(handoffID))
		fmt.Printf("  blocker handoff: %s (%s)\n", ui.RenderAccent(result.BlockerID), result.BlockerPath)
		fmt.Printf("  report: %s\n", result.ReportPath)
		return nil
	},
}

func promptBlockReason(handoffID string) (string, error) {
	var reason string
	form := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title(fmt.Sprintf("Why is %s blocked?", handoffID)).
			Description("Becomes the blocker handoff sent back to the originating repo.").
			Value(&reason),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading blocker reason: %w", err)
	}
	return reason, nil
}

func init() {
	blockCmd.Flags().StringVar(&blockReason, "reason", "", "why the handoff cannot proceed")
	rootCmd.AddCommand(blockCmd)
}
