package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/closure"
	"github.com/steveyegge/handoff/internal/lockfile"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/ui"
)

var closeCmd = &cobra.Command{
	Use:   "close <handoff-id>",
	Short: "Verify, write the consumption report, and mark the handoff done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]

		lock, err := lockfile.Acquire(plan.CanonicalPath(handoffDir(), handoffID))
		if err != nil {
			if errors.Is(err, lockfile.ErrLockBusy) {
				return fmt.Errorf("handoff %s is being updated by another process", handoffID)
			}
			return err
		}
		defer lock.Release()

		engine := closure.NewEngine(handoffDir(), rootDir, cfg.Repo)
		result, err := engine.Close(cmd.Context(), handoffID)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(result)
			return nil
		}

		for _, v := range result.Verified {
			fmt.Printf("%s %s\n", ui.RenderPass(ui.IconPass), v.Command)
		}
		fmt.Printf("%s %s closed\n", ui.RenderPass(ui.IconPass), ui.RenderAccent(handoffID))
		fmt.Printf("  report: %s\n", result.ReportPath)
		if len(result.Commits) > 0 {
			fmt.Printf("  %d commits, +%d/-%d across %d files\n",
				len(result.Commits),
				result.Summary.Insertions, result.Summary.Deletions, result.Summary.FilesChanged)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
