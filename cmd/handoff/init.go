package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/config"
	"github.com/steveyegge/handoff/internal/ui"
)

var (
	initRepo string
	initDir  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and handoffs directory for a project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.Default(rootDir)
		if initRepo != "" {
			c.Repo = initRepo
		}
		if initDir != "" {
			c.Dir = initDir
		}
		if err := config.Init(rootDir, c); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"repo": c.Repo,
				"dir":  c.Dir,
			})
			return nil
		}
		fmt.Printf("%s initialized %s\n", ui.RenderPass(ui.IconPass),
			ui.RenderAccent(filepath.Join(rootDir, config.ConfigDir, "config.yaml")))
		fmt.Printf("  repo: %s\n  handoffs: %s\n", c.Repo, c.Dir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initRepo, "repo", "", "local repository identity (default: directory name)")
	initCmd.Flags().StringVar(&initDir, "handoffs-dir", "", "handoffs directory (default: handoffs)")
	rootCmd.AddCommand(initCmd)
}
