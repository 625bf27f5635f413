package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/lockfile"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/ui"
)

var completeCmd = &cobra.Command{
	Use:   "complete <handoff-id> <REQ-NNN>...",
	Short: "Mark plan requirements complete and recompute the plan status",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]
		reqIDs := args[1:]
		path := plan.CanonicalPath(handoffDir(), handoffID)

		lock, err := lockfile.Acquire(path)
		if err != nil {
			if errors.Is(err, lockfile.ErrLockBusy) {
				return fmt.Errorf("plan for %s is being updated by another process", handoffID)
			}
			return err
		}
		defer lock.Release()

		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("no plan for %s (run 'handoff plan %s' first)", handoffID, handoffID)
			}
			return fmt.Errorf("reading plan: %w", err)
		}

		updated, p, err := plan.Complete(string(content), reqIDs, time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}

		fm := p.Frontmatter
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"handoff_id":         handoffID,
				"completed":          reqIDs,
				"requirements_done":  fm.RequirementsDone,
				"requirements_total": fm.RequirementsTotal,
				"status":             fm.Status,
			})
			return nil
		}

		for _, id := range reqIDs {
			fmt.Printf("%s %s\n", ui.RenderPass(ui.IconPass), id)
		}
		fmt.Printf("%d/%d done · plan status: %s\n",
			fm.RequirementsDone, fm.RequirementsTotal, ui.RenderAccent(string(fm.Status)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
