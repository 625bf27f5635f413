package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/ui"
	"github.com/steveyegge/handoff/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every handoff document in the corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loader.Load(handoffDir())
		if err != nil {
			return err
		}
		errs := append(corpus.Errors, validation.ValidateCorpus(corpus.Documents, cfg.Repo)...)

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"scanned": len(corpus.Documents),
				"errors":  errs,
			})
			if len(errs) > 0 {
				os.Exit(1)
			}
			return nil
		}

		if len(errs) == 0 {
			fmt.Printf("%s %d handoffs valid\n", ui.RenderPass(ui.IconPass), len(corpus.Documents))
			return nil
		}
		printValidationErrors(errs)
		os.Exit(1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
