package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/ui"
)

var showPlanFlag bool

var showCmd = &cobra.Command{
	Use:   "show <handoff-id>",
	Short: "Show one handoff document (or its plan) rendered for the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]
		doc, err := loader.FindByID(handoffDir(), handoffID)
		if err != nil {
			return err
		}

		if showPlanFlag {
			return showPlan(handoffID)
		}

		fm := doc.Frontmatter
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"handoff_id":   fm.HandoffID,
				"direction":    fm.Direction,
				"status":       fm.Status,
				"from_repo":    fm.FromRepo,
				"to_repo":      fm.ToRepo,
				"created_at":   fm.CreatedAt,
				"requires":     fm.Requires,
				"acceptance":   fm.Acceptance,
				"verification": fm.Verification,
				"risks":        fm.Risks,
				"notes":        fm.Notes,
				"body":         doc.Body,
				"file":         doc.FilePath,
			})
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", fm.HandoffID)
		fmt.Fprintf(&b, "**Status:** %s · **Direction:** %s · **Route:** %s → %s\n\n",
			fm.Status, fm.Direction, fm.FromRepo, fm.ToRepo)
		if len(fm.Requires) > 0 {
			b.WriteString("## Requires\n\n")
			for _, r := range fm.Requires {
				fmt.Fprintf(&b, "- **%s**: %s\n", r.Type, r.Description)
			}
			b.WriteString("\n")
		}
		if len(fm.Acceptance) > 0 {
			b.WriteString("## Acceptance\n\n")
			for _, a := range fm.Acceptance {
				fmt.Fprintf(&b, "- %s\n", a)
			}
			b.WriteString("\n")
		}
		if len(fm.Verification) > 0 {
			b.WriteString("## Verification\n\n")
			for _, v := range fm.Verification {
				fmt.Fprintf(&b, "- `%s`\n", v)
			}
			b.WriteString("\n")
		}
		b.WriteString(doc.Body)

		fmt.Print(ui.RenderMarkdown(b.String()))
		return nil
	},
}

func showPlan(handoffID string) error {
	path := plan.CanonicalPath(handoffDir(), handoffID)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no plan for %s (run 'handoff plan %s' first)", handoffID, handoffID)
		}
		return fmt.Errorf("reading plan: %w", err)
	}
	if jsonOutput {
		p, err := plan.Parse(string(content))
		if err != nil {
			return err
		}
		outputJSON(p)
		return nil
	}
	fmt.Print(ui.RenderMarkdown(string(content)))
	return nil
}

func init() {
	showCmd.Flags().BoolVar(&showPlanFlag, "plan", false, "show the consumption plan instead of the handoff")
	rootCmd.AddCommand(showCmd)
}
