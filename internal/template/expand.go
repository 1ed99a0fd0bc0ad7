package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/worktrunk/worktrunk/internal/shellquote"
)

// Mode selects how a resolved variable's value is embedded into the
// output: ShellEscape wraps it for safe inclusion in a shell command body;
// Literal substitutes it verbatim (used for filesystem paths).
type Mode int

const (
	ShellEscape Mode = iota
	Literal
)

var exprRe = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
var callRe = regexp.MustCompile(`^worktree_path_of_branch\(\s*["']?([^"')]*)["']?\s*\)$`)

// Expand substitutes every `{{ ... }}` expression in src using vars,
// applying any `|filter` chain, and returns the result. An unresolvable
// variable name or unknown filter expands to "", and Expand returns the
// first such error together with the expanded text.
func Expand(src string, vars Variables, mode Mode) (string, error) {
	var firstErr error
	out := exprRe.ReplaceAllStringFunc(src, func(match string) string {
		inner := exprRe.FindStringSubmatch(match)[1]
		value, err := evalExpr(inner, vars)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if mode == ShellEscape {
			return shellquote.Quote(value)
		}
		return value
	})
	return out, firstErr
}

// evalExpr evaluates one `{{ ... }}` expression body: a variable or
// function call, followed by zero or more `|filter` stages.
func evalExpr(expr string, vars Variables) (string, error) {
	parts := strings.Split(expr, "|")
	head := strings.TrimSpace(parts[0])

	value, err := evalHead(head, vars)
	if err != nil {
		return "", err
	}

	for _, stage := range parts[1:] {
		name := strings.TrimSpace(stage)
		fn, ok := filterFuncs[name]
		if !ok {
			return "", fmt.Errorf("unknown template filter %q", name)
		}
		value = fn(value)
	}
	return value, nil
}

func evalHead(head string, vars Variables) (string, error) {
	if m := callRe.FindStringSubmatch(head); m != nil {
		branch := m[1]
		if vars.WorktreePathOf == nil {
			return "", nil
		}
		return vars.WorktreePathOf(branch), nil
	}
	value, ok := vars.lookup(head)
	if !ok {
		return "", fmt.Errorf("unknown template variable %q", head)
	}
	return value, nil
}
