package ai

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// maxPreviewLength caps model-content previews in normal debug logs.
	maxPreviewLength = 200
	// maxDebugContentLength caps previews when full content logging is on.
	maxDebugContentLength = 10000
)

// SanitizeResponse produces a log-safe preview of model output. Content is
// stripped of control characters even in fullLog mode so a response cannot
// inject log lines.
func SanitizeResponse(response string, fullLog bool) string {
	if response == "" {
		return ""
	}
	maxLen := maxPreviewLength
	if fullLog {
		maxLen = maxDebugContentLength
	}

	if !utf8.ValidString(response) {
		response = strings.ToValidUTF8(response, "")
	}
	var b strings.Builder
	b.Grow(len(response))
	for _, r := range response {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			b.WriteRune(r)
		}
	}
	response = b.String()

	if len(response) > maxLen {
		response = response[:maxLen] + "..."
	}
	return response
}
