package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/tracker"
	"github.com/steveyegge/handoff/internal/ui"
	"github.com/steveyegge/handoff/internal/validation"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the handoffs directory and report new or edited handoffs live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return fmt.Errorf("watch is interactive; --json is not supported")
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(handoffDir()); err != nil {
			return fmt.Errorf("watching %s: %w", handoffDir(), err)
		}

		infof("watching %s (ctrl-c to stop)", handoffDir())
		if err := runDetection(); err != nil {
			fmt.Println(ui.RenderWarn(err.Error()))
		}

		// Editors fire bursts of events per save; coalesce them behind
		// a short quiet period before rescanning.
		var timer *time.Timer
		pending := make(chan struct{}, 1)
		ctx := cmd.Context()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !strings.HasSuffix(event.Name, ".md") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchInterval, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case <-pending:
				if err := runDetection(); err != nil {
					fmt.Println(ui.RenderWarn(err.Error()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Println(ui.RenderWarn(fmt.Sprintf("watch error: %v", err)))
			}
		}
	},
}

// runDetection performs one scan/validate/detect pass and prints what
// changed since the previous state.
func runDetection() error {
	corpus, err := loader.Load(handoffDir())
	if err != nil {
		return err
	}
	if errs := append(corpus.Errors, validation.ValidateCorpus(corpus.Documents, cfg.Repo)...); len(errs) > 0 {
		printValidationErrors(errs)
	}

	store := tracker.NewFileStateStore(cfg.StatePath(rootDir))
	state, err := store.Load()
	if err != nil {
		return err
	}
	fresh := tracker.DetectNew(state, corpus.Documents)
	tracker.UpdateState(state, corpus.Documents, time.Now())
	store.Save(state)

	if len(fresh) == 0 {
		fmt.Printf("%s %s\n", ui.RenderMuted(time.Now().Format("15:04:05")), ui.RenderMuted("no changes"))
		return nil
	}
	for _, doc := range fresh {
		fm := doc.Frontmatter
		fmt.Printf("%s %s %s %s\n",
			ui.RenderMuted(time.Now().Format("15:04:05")),
			ui.StatusIcon(string(fm.Status)),
			ui.RenderAccent(fm.HandoffID),
			ui.RenderMuted(fmt.Sprintf("%s → %s", fm.FromRepo, fm.ToRepo)))
	}
	return nil
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "debounce", 500*time.Millisecond, "quiet period before rescanning after a change")
	rootCmd.AddCommand(watchCmd)
}
