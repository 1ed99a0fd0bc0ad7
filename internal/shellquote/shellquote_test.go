package shellquote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: "''"},
		{name: "simple string", input: "hello", want: "'hello'"},
		{name: "string with single quote", input: "it's", want: "'it'\"'\"'s'"},
		{name: "string with multiple single quotes", input: "it's Bob's", want: "'it'\"'\"'s Bob'\"'\"'s'"},
		{name: "string with spaces", input: "hello world", want: "'hello world'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}
