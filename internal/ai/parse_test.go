package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare json untouched", in: `{"a":1}`, want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "json language tag", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  ```json\n{\"a\":1}\n```  ", want: `{"a":1}`},
		{name: "fence on same line as payload", in: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "multiline payload", in: "```json\n{\n  \"a\": 1\n}\n```", want: "{\n  \"a\": 1\n}"},
		{name: "empty string", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	short := "a short response"
	assert.Equal(t, short, truncateForLog(short))

	long := strings.Repeat("x", maxLoggedResponse+100)
	got := truncateForLog(long)
	assert.Len(t, got, maxLoggedResponse+len("...(truncated)"))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
}
