package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/types"
	"github.com/steveyegge/handoff/internal/ui"
)

var (
	listStatusFilter    string
	listDirectionFilter string
)

type listEntry struct {
	HandoffID string `json:"handoff_id"`
	Direction string `json:"direction"`
	Status    string `json:"status"`
	FromRepo  string `json:"from_repo"`
	ToRepo    string `json:"to_repo"`
	HasPlan   bool   `json:"has_plan"`
	File      string `json:"file"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List handoff documents in the corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loader.Load(handoffDir())
		if err != nil {
			return err
		}

		entries := make([]listEntry, 0, len(corpus.Documents))
		for _, doc := range corpus.Documents {
			fm := doc.Frontmatter
			if listStatusFilter != "" && string(fm.Status) != listStatusFilter {
				continue
			}
			if listDirectionFilter != "" && string(fm.Direction) != listDirectionFilter {
				continue
			}
			_, statErr := os.Stat(plan.CanonicalPath(handoffDir(), fm.HandoffID))
			entries = append(entries, listEntry{
				HandoffID: fm.HandoffID,
				Direction: string(fm.Direction),
				Status:    string(fm.Status),
				FromRepo:  fm.FromRepo,
				ToRepo:    fm.ToRepo,
				HasPlan:   statErr == nil,
				File:      doc.FilePath,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].HandoffID < entries[j].HandoffID
		})

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"total":    len(entries),
				"handoffs": entries,
			})
			return nil
		}

		if len(entries) == 0 {
			fmt.Println(ui.RenderMuted("no handoffs found"))
			return nil
		}
		printListTable(entries)
		return nil
	},
}

func printListTable(entries []listEntry) {
	fmt.Printf("%s\n", ui.RenderHeader(fmt.Sprintf("handoffs (%d)", len(entries))))
	fmt.Println(ui.RenderSeparator())
	for _, e := range entries {
		planMark := ui.RenderMuted("·")
		if e.HasPlan {
			planMark = ui.RenderAccent("◆")
		}
		route := ui.RenderMuted(fmt.Sprintf("%s → %s", e.FromRepo, e.ToRepo))
		fmt.Printf("%s %s %-14s %-10s %s\n",
			ui.StatusIcon(e.Status),
			planMark,
			e.Status,
			e.Direction,
			ui.RenderAccent(e.HandoffID))
		fmt.Printf("    %s\n", route)
	}
}

func init() {
	listCmd.Flags().StringVar(&listStatusFilter, "status", "", "filter by handoff status ("+statusNames()+")")
	listCmd.Flags().StringVar(&listDirectionFilter, "direction", "", "filter by direction (incoming, outgoing)")
	rootCmd.AddCommand(listCmd)
}

func statusNames() string {
	out := ""
	for i, s := range types.AllStatuses {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}
