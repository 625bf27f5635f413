// Command handoff tracks cross-repository handoff documents: detecting
// new or edited handoffs, validating them, and driving their consumption
// plans through to closure or block.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/config"
)

var (
	rootDir    string
	dirFlag    string
	jsonOutput bool
	quietFlag  bool

	cfg config.Config

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "handoff",
	Short: "Track and consume cross-repository handoff documents",
	Long: `handoff manages the lifecycle of cross-repository handoff documents:
structured markdown files asserting units of required work flowing
between repositories.

Typical flow:
  handoff detect              # what's new since the last run
  handoff plan 031-auth       # generate a consumption plan
  handoff complete 031-auth REQ-001
  handoff close 031-auth      # verify, report, mark done
  handoff block 031-auth      # or bounce a blocker back`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}
			rootDir = wd
		}
		var err error
		cfg, err = config.Load(rootDir)
		if err != nil {
			return err
		}
		if dirFlag != "" {
			cfg.Dir = dirFlag
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "handoffs directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress non-essential output")
}

// handoffDir returns the absolute handoffs directory for this run.
func handoffDir() string {
	return cfg.HandoffDir(rootDir)
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// fatalf reports an error and exits, respecting --json.
func fatalf(format string, args ...interface{}) {
	if jsonOutput {
		outputJSON(map[string]string{"error": fmt.Sprintf(format, args...)})
	} else {
		fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	}
	os.Exit(1)
}

// infof prints progress chatter unless --quiet or --json.
func infof(format string, args ...interface{}) {
	if quietFlag || jsonOutput {
		return
	}
	fmt.Printf(format+"\n", args...)
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	if err := rootCmd.ExecuteContext(rootCtx); err != nil {
		fatalf("%v", err)
	}
}
