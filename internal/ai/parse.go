package ai

import (
	"strings"
)

// maxLoggedResponse caps how much of a raw model response is written to
// the log when parsing fails.
const maxLoggedResponse = 500

// stripCodeFences removes a surrounding markdown code fence from a model
// response, tolerating a language tag ("```json"). Models wrap JSON in
// fences often enough that decoding without stripping is unreliable.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		// Drop a language tag on the opening fence line.
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncateForLog shortens a raw response for log output.
func truncateForLog(s string) string {
	if len(s) <= maxLoggedResponse {
		return s
	}
	return s[:maxLoggedResponse] + "...(truncated)"
}
