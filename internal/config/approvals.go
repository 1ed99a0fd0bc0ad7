package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

// ApprovalRecord is one approved, fully-expanded command template plus the
// timestamp it was approved at.
type ApprovalRecord struct {
	Template   string    `toml:"template"`
	ApprovedAt time.Time `toml:"approved_at"`
}

// ApprovalList is the set of approved command templates for one project.
type ApprovalList struct {
	Commands []ApprovalRecord `toml:"approved_commands"`
}

// IsApproved reports whether expanded has already been approved for this
// project (step 1: "a changed template requires fresh
// approval", i.e. exact-string match against the expanded text).
func (l ApprovalList) IsApproved(expanded string) bool {
	for _, r := range l.Commands {
		if r.Template == expanded {
			return true
		}
	}
	return false
}

// Approve records expanded as approved, stamped with now. It is a no-op if
// already present, keeping IsApproved monotone.
func (l *ApprovalList) Approve(expanded string, now time.Time) {
	if l.IsApproved(expanded) {
		return
	}
	l.Commands = append(l.Commands, ApprovalRecord{Template: expanded, ApprovedAt: now})
}

// ProjectID derives the stable per-project identifier: the primary remote
// URL if one is configured, else the canonicalized main worktree path.
// Both forms are normalized so that
// trivial formatting differences (trailing slash, .git suffix,
// scp-style vs URL syntax) do not fragment the approvals key.
func ProjectID(repoRoot string) string {
	if remote, err := primaryRemoteURL(repoRoot); err == nil && remote != "" {
		return "remote:" + normalizeRemoteURL(remote)
	}
	return "path:" + canonicalizePath(repoRoot)
}

func primaryRemoteURL(repoRoot string) (string, error) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// normalizeRemoteURL collapses scp-style (git@host:owner/repo.git) and URL
// syntax to a single canonical "host/owner/repo" form, dropping a trailing
// ".git" and any credentials embedded in the URL.
func normalizeRemoteURL(remote string) string {
	remote = strings.TrimSuffix(remote, "/")
	remote = strings.TrimSuffix(remote, ".git")

	if u, err := url.Parse(remote); err == nil && u.Host != "" {
		return u.Host + u.Path
	}

	if idx := strings.Index(remote, "@"); idx >= 0 {
		rest := remote[idx+1:]
		rest = strings.Replace(rest, ":", "/", 1)
		return rest
	}
	return remote
}

func canonicalizePath(p string) string {
	return strings.TrimSuffix(p, "/")
}

// ProjectIDHash returns a short, filesystem-safe hash of id, used as the
// hook-log key.
func ProjectIDHash(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])[:12]
}

// PersistApproval reloads the user config from disk, merges the new
// approval in, and writes it back — avoiding clobbering concurrent writes
// to other projects' approval lists.
func PersistApproval(configPath, projectID, expanded string, now time.Time) error {
	cfg, err := LoadUserConfig(configPath)
	if err != nil {
		return fmt.Errorf("reloading config before persisting approval: %w", err)
	}
	if cfg.Approved == nil {
		cfg.Approved = map[string]ApprovalList{}
	}
	list := cfg.Approved[projectID]
	list.Approve(expanded, now)
	cfg.Approved[projectID] = list
	return SaveUserConfig(configPath, cfg)
}
