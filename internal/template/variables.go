// Package template expands the Jinja-subset variable syntax used in hook
// and workflow commands: `{{ variable }}` and `{{ variable|filter }}`,
// chained filters, and the `worktree_path_of_branch(...)` call form. No
// off-the-shelf templating library in the retrieval pack offers these
// domain-specific filters or the shell-escape/literal expansion split, so
// this package is a small hand-rolled parser (see DESIGN.md).
package template

// Variables is the full set of named values a template may reference.
// Merge-related hooks additionally set Target; create-related hooks
// additionally set Base and BaseWorktreePath.
type Variables struct {
	Repo                string
	Branch              string
	WorktreeName        string
	RepoPath            string
	WorktreePath        string
	DefaultBranch       string
	PrimaryWorktreePath string
	Commit              string
	ShortCommit         string
	Remote              string
	RemoteURL           string
	Upstream            string
	Target              string
	Base                string
	BaseWorktreePath    string

	// WorktreePathOf resolves worktree_path_of_branch(branch); nil means
	// the function returns "" unconditionally.
	WorktreePathOf func(branch string) string
}

// lookup resolves a variable name, including its deprecated aliases.
func (v Variables) lookup(name string) (string, bool) {
	switch name {
	case "repo":
		return v.Repo, true
	case "branch":
		return v.Branch, true
	case "worktree_name":
		return v.WorktreeName, true
	case "repo_path":
		return v.RepoPath, true
	case "worktree_path", "worktree":
		return v.WorktreePath, true
	case "default_branch":
		return v.DefaultBranch, true
	case "primary_worktree_path", "main_worktree", "main_worktree_path", "repo_root":
		return v.PrimaryWorktreePath, true
	case "commit":
		return v.Commit, true
	case "short_commit":
		return v.ShortCommit, true
	case "remote":
		return v.Remote, true
	case "remote_url":
		return v.RemoteURL, true
	case "upstream":
		return v.Upstream, true
	case "target":
		return v.Target, true
	case "base":
		return v.Base, true
	case "base_worktree_path":
		return v.BaseWorktreePath, true
	default:
		return "", false
	}
}

// ToMap flattens Variables into the JSON context object piped to a
// prepared command's stdin.
func (v Variables) ToMap() map[string]string {
	m := map[string]string{
		"repo":                   v.Repo,
		"branch":                 v.Branch,
		"worktree_name":          v.WorktreeName,
		"repo_path":              v.RepoPath,
		"worktree_path":          v.WorktreePath,
		"default_branch":         v.DefaultBranch,
		"primary_worktree_path":  v.PrimaryWorktreePath,
		"commit":                 v.Commit,
		"short_commit":           v.ShortCommit,
		"remote":                 v.Remote,
		"remote_url":             v.RemoteURL,
		"upstream":               v.Upstream,
	}
	if v.Target != "" {
		m["target"] = v.Target
	}
	if v.Base != "" {
		m["base"] = v.Base
	}
	if v.BaseWorktreePath != "" {
		m["base_worktree_path"] = v.BaseWorktreePath
	}
	return m
}
