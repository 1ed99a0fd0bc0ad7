package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSC8HyperlinkWrapsLabel(t *testing.T) {
	got := OSC8Hyperlink("#123", "https://example.com/pr/123")
	assert.Equal(t, "\x1b]8;;https://example.com/pr/123\x1b\\#123\x1b]8;;\x1b\\", got)
}

func TestOSC8HyperlinkEmptyURLReturnsLabel(t *testing.T) {
	assert.Equal(t, "#123", OSC8Hyperlink("#123", ""))
	assert.Equal(t, "#123", OSC8Hyperlink("#123", "   "))
}
