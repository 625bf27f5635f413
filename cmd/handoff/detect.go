package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/tracker"
	"github.com/steveyegge/handoff/internal/types"
	"github.com/steveyegge/handoff/internal/ui"
	"github.com/steveyegge/handoff/internal/validation"
)

type detectResult struct {
	Scanned    int                     `json:"scanned"`
	New        []detectEntry           `json:"new"`
	Validation []types.ValidationError `json:"validation_errors,omitempty"`
}

type detectEntry struct {
	HandoffID string       `json:"handoff_id"`
	Status    types.Status `json:"status"`
	Direction string       `json:"direction"`
	FilePath  string       `json:"file_path"`
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect handoffs that are new or edited since the last run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loader.Load(handoffDir())
		if err != nil {
			return err
		}

		verrs := append(corpus.Errors, validation.ValidateCorpus(corpus.Documents, cfg.Repo)...)

		store := tracker.NewFileStateStore(cfg.StatePath(rootDir))
		state, _ := store.Load()
		fresh := tracker.DetectNew(state, corpus.Documents)
		tracker.UpdateState(state, corpus.Documents, time.Now().UTC())
		_ = store.Save(state)

		result := detectResult{Scanned: len(corpus.Documents), New: []detectEntry{}, Validation: verrs}
		for _, doc := range fresh {
			result.New = append(result.New, detectEntry{
				HandoffID: doc.Frontmatter.HandoffID,
				Status:    doc.Frontmatter.Status,
				Direction: string(doc.Frontmatter.Direction),
				FilePath:  doc.FilePath,
			})
		}

		if jsonOutput {
			outputJSON(result)
			return nil
		}

		printDetect(result)
		return nil
	},
}

func printDetect(result detectResult) {
	infof("Scanned %d handoffs", result.Scanned)
	if len(result.New) == 0 {
		fmt.Println(ui.RenderMuted("Nothing new since last run."))
	} else {
		fmt.Println(ui.RenderHeader(fmt.Sprintf("%d new since last run", len(result.New))))
		for _, e := range result.New {
			fmt.Printf("  %s %s %s %s\n",
				ui.StatusIcon(string(e.Status)),
				ui.RenderAccent(e.HandoffID),
				ui.RenderMuted(string(e.Status)),
				ui.RenderMuted(e.FilePath))
		}
	}
	printValidationErrors(result.Validation)
}

func printValidationErrors(errs []types.ValidationError) {
	if len(errs) == 0 {
		return
	}
	fmt.Println(ui.RenderFail(fmt.Sprintf("%d validation problem(s):", len(errs))))
	for _, e := range errs {
		fmt.Printf("  %s %s\n", ui.RenderFail(ui.IconFail), e.String())
	}
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
