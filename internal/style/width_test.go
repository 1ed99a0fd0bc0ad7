package style

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestVisualWidthIgnoresANSICodes(t *testing.T) {
	plain := "feature/foo"
	styled := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Render(plain)
	assert.Equal(t, len(plain), VisualWidth(styled))
}

func TestVisualWidthCountsWideRunes(t *testing.T) {
	assert.Equal(t, 4, VisualWidth("你好"))
}

func TestTruncateShorterThanWidthIsUnchanged(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10, "…"))
}

func TestTruncateAddsTailWhenCut(t *testing.T) {
	out := Truncate("feature/very-long-branch-name", 10, "…")
	assert.LessOrEqual(t, VisualWidth(out), 10)
	assert.Contains(t, out, "…")
}

func TestPadRightFillsToWidth(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
}

func TestPadLeftFillsToWidth(t *testing.T) {
	assert.Equal(t, "  ab", PadLeft("ab", 4))
}

func TestPadRightNoOpWhenAlreadyWideEnough(t *testing.T) {
	assert.Equal(t, "abcd", PadRight("abcd", 2))
}
