// Package llm generates commit and squash messages by shelling out to a
// user-configured command, falling back to deterministic text whenever no
// command is configured or the command fails.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/tracelog"
)

// commitSystemPrompt is the one-line system prompt for commit messages; the
// subject/blank line/optional body format is spelled out in
// buildCommitPrompt.
const commitSystemPrompt = "Write a concise, clear git commit message based on the provided diff."

// Generator shells out to config.LLMConfig.Command to produce commit and
// squash messages, satisfying the shape merge.MessageGenerator expects.
// It never returns an error from its exported methods: a failed or
// unconfigured command falls back to deterministic text instead, matching
// the "LLM generation failed, using deterministic message" behavior a
// merge run should never abort over.
type Generator struct {
	Command string
	Args    []string
}

// New builds a Generator from cfg. The returned Generator's Command is
// empty when no LLM command is configured, so every call falls straight
// through to the deterministic fallback.
func New(cfg config.LLMConfig) *Generator {
	return &Generator{Command: cfg.Command, Args: cfg.Args}
}

// CommitMessage generates a message for the currently staged diff, or
// "WIP: Auto-commit before merge" if no command is configured or it fails.
func (g *Generator) CommitMessage(ctx context.Context, diff string) (string, error) {
	if g.Command == "" {
		return "WIP: Auto-commit before merge", nil
	}
	prompt := buildCommitPrompt(diff)
	msg, err := g.run(ctx, "llm-commit", append(append([]string{}, g.Args...), "--system", commitSystemPrompt, prompt), "")
	if err != nil {
		return "WIP: Auto-commit before merge", nil
	}
	return msg, nil
}

// SquashMessage generates a message summarizing the commits being squashed
// onto target, or the deterministic "Squash commits from <target>" message
// (subjects listed oldest-first) if no command is configured or it fails.
func (g *Generator) SquashMessage(ctx context.Context, target string, subjects []string, diff string) (string, error) {
	if g.Command == "" {
		return deterministicSquashMessage(target, subjects), nil
	}
	prompt := buildSquashPrompt(target, subjects, diff)
	msg, err := g.run(ctx, "llm-squash", g.Args, prompt)
	if err != nil {
		return deterministicSquashMessage(target, subjects), nil
	}
	return msg, nil
}

// deterministicSquashMessage mirrors merge.deterministicSquashMessage: the
// two packages don't import each other, so the format lives in both,
// grounded on the same source.
func deterministicSquashMessage(target string, subjects []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Squash commits from %s\n\nCombined commits:\n", target)
	for i := len(subjects) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "- %s\n", subjects[i])
	}
	return b.String()
}

// run executes g.Command with args, optionally piping stdin, and returns
// its trimmed stdout. An empty result or a non-zero exit is an error.
func (g *Generator) run(ctx context.Context, label string, args []string, stdin string) (string, error) {
	var out string
	err := tracelog.Timed(label, g.Command, func() error {
		cmd := exec.CommandContext(ctx, g.Command, args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if stdin != "" {
			cmd.Stdin = strings.NewReader(stdin)
		}
		if runErr := cmd.Run(); runErr != nil {
			return fmt.Errorf("llm command failed: %s", strings.TrimSpace(stderr.String()))
		}
		out = strings.TrimSpace(stdout.String())
		if out == "" {
			return fmt.Errorf("llm command returned an empty message")
		}
		return nil
	})
	return out, err
}

func buildCommitPrompt(diff string) string {
	var b strings.Builder
	b.WriteString("Format\n")
	b.WriteString("- First line: <50 chars, present tense, describes WHAT and WHY (not HOW).\n")
	b.WriteString("- Blank line after first line.\n")
	b.WriteString("- Optional details with proper line breaks explaining context.\n")
	b.WriteString("- Return ONLY the formatted message without quotes, code blocks, or preamble.\n\n")
	b.WriteString("<git-diff>\n```\n")
	b.WriteString(diff)
	b.WriteString("\n```\n</git-diff>\n")
	return b.String()
}

func buildSquashPrompt(target string, subjects []string, diff string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Squashing %d commits on this branch since branching from %s into one. "+
		"Generate a conventional commit message (feat/fix/docs/style/refactor) that combines "+
		"these changes into one cohesive message. Output only the commit message without any "+
		"explanation.\n\n", len(subjects), target)
	if len(subjects) > 0 {
		b.WriteString("Previous commit message titles, for style reference only:\n")
		for i := len(subjects) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "- %s\n", subjects[i])
		}
		b.WriteString("\n")
	}
	b.WriteString("<git-diff>\n```\n")
	b.WriteString(diff)
	b.WriteString("\n```\n</git-diff>\n")
	return b.String()
}
