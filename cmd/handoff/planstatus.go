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

var planStatusCmd = &cobra.Command{
	Use:   "plan-status <handoff-id> [new-status]",
	Short: "Show or transition a consumption plan's status",
	Long: `Shows the plan status for a handoff, or performs a guarded manual
transition. Completion auto-advances a plan through pending, in_progress,
and testing; moving past testing (review, done) or into blocked is always
a manual step done here.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]
		path := plan.CanonicalPath(handoffDir(), handoffID)

		if len(args) == 1 {
			p, err := plan.LoadFile(path)
			if err != nil {
				return err
			}
			fm := p.Frontmatter
			if jsonOutput {
				outputJSON(map[string]interface{}{
					"handoff_id":         handoffID,
					"status":             fm.Status,
					"requirements_done":  fm.RequirementsDone,
					"requirements_total": fm.RequirementsTotal,
				})
				return nil
			}
			fmt.Printf("%s %s: %s (%d/%d done)\n", ui.StatusIcon(string(fm.Status)),
				ui.RenderAccent(handoffID), fm.Status, fm.RequirementsDone, fm.RequirementsTotal)
			return nil
		}

		target := plan.Status(args[1])
		if !target.IsValid() {
			return fmt.Errorf("unknown plan status %q", args[1])
		}

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

		updated, p, err := plan.Transition(string(content), target, time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"handoff_id": handoffID,
				"status":     p.Frontmatter.Status,
			})
			return nil
		}
		fmt.Printf("%s %s plan: %s\n", ui.RenderPass(ui.IconPass), ui.RenderAccent(handoffID), target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planStatusCmd)
}
