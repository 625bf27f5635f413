package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/frontmatter"
	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/types"
	"github.com/steveyegge/handoff/internal/ui"
	"github.com/steveyegge/handoff/internal/validation"
)

var statusCmd = &cobra.Command{
	Use:   "status <handoff-id> [new-status]",
	Short: "Show a handoff's status, or transition it through the guarded state machine",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]
		doc, err := loader.FindByID(handoffDir(), handoffID)
		if err != nil {
			return err
		}
		current := doc.Frontmatter.Status

		if len(args) == 1 {
			if jsonOutput {
				outputJSON(map[string]interface{}{
					"handoff_id": handoffID,
					"status":     current,
					"allowed":    current.AllowedTransitions(),
				})
				return nil
			}
			fmt.Printf("%s %s: %s\n", ui.StatusIcon(string(current)), ui.RenderAccent(handoffID), current)
			fmt.Printf("  allowed transitions: %s\n", ui.RenderMuted(current.DescribeAllowed()))
			return nil
		}

		target := types.Status(args[1])
		if !target.IsValid() {
			return fmt.Errorf("unknown status %q (want one of: %s)", args[1], statusNames())
		}
		if err := validation.CheckTransition(current, target); err != nil {
			return err
		}

		if err := rewriteHandoffStatus(doc, target); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"handoff_id": handoffID,
				"from":       current,
				"to":         target,
			})
			return nil
		}
		fmt.Printf("%s %s: %s → %s\n", ui.RenderPass(ui.IconPass), ui.RenderAccent(handoffID), current, target)
		return nil
	},
}

// rewriteHandoffStatus re-renders the handoff frontmatter with the new
// status, leaving the markdown body untouched.
func rewriteHandoffStatus(doc types.HandoffDocument, target types.Status) error {
	fm := doc.Frontmatter
	fm.Status = target
	content, err := frontmatter.Render(fm, doc.Body)
	if err != nil {
		return fmt.Errorf("rendering handoff: %w", err)
	}
	if err := os.WriteFile(doc.FilePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing handoff: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
