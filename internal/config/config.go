// Package config loads tool configuration: the local repository identity,
// the handoffs directory, and the state file location. Values come from
// .handoff/config.yaml, HANDOFF_* environment variables, then defaults,
// in that order of precedence (env wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/steveyegge/handoff/internal/tracker"
)

// ConfigDir is the per-project configuration directory.
const ConfigDir = ".handoff"

// Config is the resolved tool configuration.
type Config struct {
	// Repo is the local repository identity used by the direction
	// cross-field rules.
	Repo string `yaml:"repo"`
	// Dir is the handoffs directory, relative to the project root.
	Dir string `yaml:"dir"`
	// StateFile is the detection state path, relative to the project root.
	StateFile string `yaml:"state_file"`
}

// Default returns the configuration used when nothing is set. The repo
// identity falls back to the project root's directory name.
func Default(root string) Config {
	return Config{
		Repo:      filepath.Base(root),
		Dir:       "handoffs",
		StateFile: tracker.DefaultStateFile,
	}
}

// Load resolves configuration for the project rooted at root.
func Load(root string) (Config, error) {
	cfg := Default(root)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(filepath.Join(root, ConfigDir, "config.yaml"))
	v.SetEnvPrefix("HANDOFF")
	v.AutomaticEnv()

	v.SetDefault("repo", cfg.Repo)
	v.SetDefault("dir", cfg.Dir)
	v.SetDefault("state_file", cfg.StateFile)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else (bad YAML,
		// permissions) should be surfaced.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// Read keys individually so AutomaticEnv overrides apply.
	cfg.Repo = v.GetString("repo")
	cfg.Dir = v.GetString("dir")
	cfg.StateFile = v.GetString("state_file")
	return cfg, nil
}

// HandoffDir returns the absolute handoffs directory.
func (c Config) HandoffDir(root string) string {
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	return filepath.Join(root, c.Dir)
}

// StatePath returns the absolute state-file path.
func (c Config) StatePath(root string) string {
	if filepath.IsAbs(c.StateFile) {
		return c.StateFile
	}
	return filepath.Join(root, c.StateFile)
}

// Init writes a starter config file and creates the handoffs directory.
// It refuses to clobber an existing config.
func Init(root string, cfg Config) error {
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	content := fmt.Sprintf("repo: %s\ndir: %s\nstate_file: %s\n", cfg.Repo, cfg.Dir, cfg.StateFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.MkdirAll(cfg.HandoffDir(root), 0o755); err != nil {
		return fmt.Errorf("creating handoffs dir: %w", err)
	}
	return nil
}
