// Package config loads user and project configuration from TOML, resolves
// a stable per-project identifier, and persists the command-approval store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// AppConfig is the user-level configuration, conventionally at
// $XDG_CONFIG_HOME/worktrunk/config.toml (or ~/.config on platforms
// without XDG).
type AppConfig struct {
	WorktreeDir   string                  `toml:"worktree_dir"`
	SortMode      string                  `toml:"sort_mode"`
	TrustMode     string                  `toml:"trust_mode"`
	Pager         string                  `toml:"pager"`
	Editor        string                  `toml:"editor"`
	MergeMethod   string                  `toml:"merge_method"`
	BranchTemplate string                 `toml:"branch_name_template"`
	Hooks         HookConfiguration       `toml:"hooks"`
	Approved      map[string]ApprovalList `toml:"approved_commands"`
	LLM           LLMConfig               `toml:"llm"`
}

// LLMConfig names the external command `wt` shells out to for commit and
// squash message generation. An empty Command means no LLM is configured
// and callers fall back to deterministic messages.
type LLMConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// ProjectConfig is the repository-scoped configuration at
// .config/wt.toml in the repository root.
type ProjectConfig struct {
	Hooks HookConfiguration `toml:"hooks"`
}

// DefaultConfig returns the baked-in defaults applied before any file is
// read.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		SortMode:    "switched",
		TrustMode:   "tofu",
		MergeMethod: "rebase",
		Approved:    map[string]ApprovalList{},
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// UserConfigPath returns the default user config file location.
func UserConfigPath() string {
	return filepath.Join(getConfigDir(), "worktrunk", "config.toml")
}

// LoadUserConfig reads configPath (or the default location if empty),
// merging onto DefaultConfig. A missing file is not an error.
func LoadUserConfig(configPath string) (*AppConfig, error) {
	if configPath == "" {
		configPath = UserConfigPath()
	} else {
		expanded, err := expandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		configPath = expanded
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// #nosec G304 -- configPath is either the fixed default location or an
	// explicit --config flag the user passed on their own command line
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("reading user config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parsing user config %s: %w", configPath, err)
	}
	if cfg.Approved == nil {
		cfg.Approved = map[string]ApprovalList{}
	}
	return cfg, nil
}

// SaveUserConfig writes cfg back to configPath, creating parent
// directories as needed.
func SaveUserConfig(configPath string, cfg *AppConfig) error {
	if configPath == "" {
		configPath = UserConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(configPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening user config for write: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// LoadProjectConfig reads .config/wt.toml under repoRoot. A missing file
// yields a zero-value ProjectConfig, not an error.
func LoadProjectConfig(repoRoot string) (*ProjectConfig, error) {
	path := filepath.Join(repoRoot, ".config", "wt.toml")
	cfg := &ProjectConfig{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if !isPathWithin(repoRoot, path) {
		return nil, fmt.Errorf("invalid project config path %q", path)
	}
	// #nosec G304 -- path is joined from a caller-supplied repo root and a fixed suffix, then verified to stay within that root
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing project config %s: %w", path, err)
	}
	return cfg, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
