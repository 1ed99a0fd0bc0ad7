// Package werrors defines the error kinds. Each kind carries
// a user-facing Display (emoji headline + indented hint) and, where the
// kind names one, an exit code to propagate to the CLI entry point.
package werrors

import "fmt"

// Kind identifies one of the closed set of error kinds.
type Kind int

const (
	KindDetachedHEAD Kind = iota
	KindUncommittedChanges
	KindBranchAlreadyExists
	KindInvalidRef
	KindWorktreeMissing
	KindNoWorktreeForBranch
	KindPathOccupied
	KindPathMismatch
	KindCreateFailed
	KindRemoveFailed
	KindCannotRemoveMain
	KindNotFastForward
	KindMergeCommitsFound
	KindRebaseConflict
	KindPushFailed
	KindConflictingChanges
	KindCommandNotApproved
	KindHookCommandFailed
	KindChildProcessExited
	KindNotInteractive
	KindProjectConfigNotFound
	KindConfigParseError
	KindLLMCommandFailed
)

// Error is the concrete error type for all werrors kinds.
type Error struct {
	Kind Kind
	// Msg is the headline; Hint is the indented actionable suggestion.
	Msg  string
	Hint string
	// ExitCode, when ExitOK is true, overrides the default 1 on propagation
	// to the CLI entry point (e.g. a hook child's exit code).
	ExitCode int
	ExitOK   bool
	// Silent suppresses printing (CommandNotApproved: the skip was already
	// explained at the approval prompt).
	Silent bool
	// Err wraps an underlying cause, if any.
	Err error

	// Extra payload used by specific kinds; kept untyped to avoid one
	// struct field per kind.
	NewerCommits []string
	Files        []string
	TargetPath   string
	StashRef     string
	HookType     string
	HookName     string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Display renders the emoji-prefixed headline and indented hint. Styling
// (color) is layered on by internal/style at the call site; Display
// returns plain text.
func (e *Error) Display() string {
	headline := emoji(e.Kind) + " " + e.Msg
	if e.Hint == "" {
		return headline
	}
	return headline + "\n    " + e.Hint
}

func emoji(k Kind) string {
	switch k {
	case KindDetachedHEAD, KindUncommittedChanges, KindBranchAlreadyExists, KindInvalidRef:
		return "⚠️"
	case KindNotFastForward, KindMergeCommitsFound, KindRebaseConflict, KindPushFailed, KindConflictingChanges:
		return "❌"
	case KindHookCommandFailed, KindChildProcessExited, KindLLMCommandFailed:
		return "💥"
	default:
		return "⚠️"
	}
}

// Exit returns the propagated exit code for this error, or (1, false) when
// no child exit code is available.
func (e *Error) Exit() (int, bool) {
	if e.ExitOK {
		return e.ExitCode, true
	}
	return 1, false
}

// New constructs a plain Error of kind k with the given message.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

// Wrap constructs an Error of kind k wrapping err.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// NotFastForward builds the kind that carries the list of newer commits and
// switches its hint between "run merge again" and "use rebase".
func NotFastForward(newerCommits []string, afterAutostashRestore bool) *Error {
	hint := "run `wt merge` again to rebase onto the new commits"
	if afterAutostashRestore {
		hint = "the target moved while your autostash was restored; rerun `wt merge`"
	}
	return &Error{
		Kind:         KindNotFastForward,
		Msg:          "push rejected: not a fast-forward",
		Hint:         hint,
		NewerCommits: newerCommits,
	}
}

// ConflictingChanges builds the autostash-refusal kind, naming the files
// whose uncommitted changes would conflict with the stash pop.
func ConflictingChanges(files []string, targetWorktreePath string) *Error {
	return &Error{
		Kind:       KindConflictingChanges,
		Msg:        fmt.Sprintf("target worktree has uncommitted changes to files this merge would touch: %v", files),
		Hint:       "commit or stash those files in " + targetWorktreePath + " first",
		Files:      files,
		TargetPath: targetWorktreePath,
	}
}

// HookCommandFailed builds the hook-failure kind carrying hook type/name.
func HookCommandFailed(hookType, hookName string, err error) *Error {
	return &Error{
		Kind:     KindHookCommandFailed,
		Msg:      fmt.Sprintf("%s hook %q failed", hookType, hookName),
		Err:      err,
		HookType: hookType,
		HookName: hookName,
	}
}

// ChildProcessExited preserves a child's exit code for propagation.
func ChildProcessExited(code int) *Error {
	return &Error{
		Kind:     KindChildProcessExited,
		Msg:      fmt.Sprintf("child process exited with status %d", code),
		ExitCode: code,
		ExitOK:   true,
	}
}

// CommandNotApproved is silent: the skip was already explained when the
// approval prompt declined.
func CommandNotApproved() *Error {
	return &Error{Kind: KindCommandNotApproved, Msg: "command not approved", Silent: true}
}

// RebaseConflict carries the captured git stderr.
func RebaseConflict(output string) *Error {
	return &Error{
		Kind: KindRebaseConflict,
		Msg:  "rebase stopped with conflicts",
		Hint: "resolve conflicts, `git rebase --continue`, then rerun `wt merge`",
		Err:  fmt.Errorf("%s", output),
	}
}
