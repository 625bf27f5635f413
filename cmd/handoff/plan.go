package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/types"
	"github.com/steveyegge/handoff/internal/ui"
	"github.com/steveyegge/handoff/internal/validation"
)

var planCmd = &cobra.Command{
	Use:   "plan <handoff-id>",
	Short: "Generate a consumption plan from an incoming handoff",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handoffID := args[0]
		doc, err := loader.FindByID(handoffDir(), handoffID)
		if err != nil {
			return err
		}
		if verrs := validation.ValidateDocument(doc, cfg.Repo); len(verrs) > 0 {
			printValidationErrors(verrs)
			return fmt.Errorf("refusing to plan an invalid handoff")
		}
		if doc.Frontmatter.Direction != types.DirectionIncoming {
			return fmt.Errorf("%s is outgoing; plans are generated for incoming handoffs only", handoffID)
		}

		p := plan.Generate(doc, time.Now())
		path := plan.CanonicalPath(handoffDir(), handoffID)
		if err := plan.Create(path, p); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"handoff_id":   handoffID,
				"plan_path":    path,
				"requirements": p.Requirements,
				"status":       p.Frontmatter.Status,
			})
			return nil
		}

		fmt.Printf("%s plan written to %s\n", ui.RenderPass(ui.IconPass), ui.RenderAccent(path))
		fmt.Printf("  %d requirements extracted:\n", len(p.Requirements))
		for _, r := range p.Requirements {
			fmt.Printf("    %s %s %s\n",
				ui.RenderMuted(r.ID),
				ui.RenderAccent(string(r.Category)),
				r.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
