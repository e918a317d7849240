package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "empty build info uses placeholders",
			info: BuildInfo{},
			want: "dev (commit: none, built: unknown)",
		},
		{
			name: "full build info",
			info: BuildInfo{Version: "1.2.0", Commit: "abc1234", Date: "2026-03-01"},
			want: "1.2.0 (commit: abc1234, built: 2026-03-01)",
		},
		{
			name: "partial build info",
			info: BuildInfo{Version: "1.2.0"},
			want: "1.2.0 (commit: none, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatVersion(tt.info))
		})
	}
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(&app{}, BuildInfo{})

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "process")
	assert.Contains(t, names, "counter")
	assert.Contains(t, names, "embeddings")
}
