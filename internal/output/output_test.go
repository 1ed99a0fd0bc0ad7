package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInteractiveCDIsNoop(t *testing.T) {
	var stderr bytes.Buffer
	c := NewInteractive(nil, &stderr, false)
	c.CD("/repos/feature")
	c.Exec("npm install")
	c.End()
	assert.Empty(t, stderr.String())
}

func TestDirectiveEmitsNulDelimitedRecords(t *testing.T) {
	var stderr, directive bytes.Buffer
	c := NewDirective(nil, &stderr, &directive)
	c.CD("/repos/feature")
	c.Exec("npm install")
	c.End()
	assert.Equal(t, "CD\x00/repos/feature\x00EXEC\x00npm install\x00END\x00", directive.String())
}

func TestDirectiveModeSuppressesIntegrationHint(t *testing.T) {
	var stderr, directive bytes.Buffer
	c := NewDirective(nil, &stderr, &directive)
	c.IntegrationHint("eval \"$(wt shell-init zsh)\"")
	assert.Empty(t, stderr.String())
}

func TestInteractiveModeShowsIntegrationHint(t *testing.T) {
	var stderr bytes.Buffer
	c := NewInteractive(nil, &stderr, false)
	c.IntegrationHint("eval \"$(wt shell-init zsh)\"")
	assert.Contains(t, stderr.String(), "enable automatic cd")
}

func TestUnstyledProgressHasNoEscapeSequences(t *testing.T) {
	var stderr bytes.Buffer
	c := NewInteractive(nil, &stderr, false)
	c.Progress("doing %s", "thing")
	assert.False(t, strings.Contains(stderr.String(), "\x1b["))
	assert.Contains(t, stderr.String(), "doing thing")
}

func TestStyledSuccessAddsANSISequence(t *testing.T) {
	var stderr bytes.Buffer
	c := NewInteractive(nil, &stderr, true)
	c.Success("done")
	assert.Contains(t, stderr.String(), "\x1b[")
	assert.Contains(t, stderr.String(), "done")
}
