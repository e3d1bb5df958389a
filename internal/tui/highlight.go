package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// highlightLines colours each code line on its own so callers can decorate
// lines individually. Unknown languages and formatter errors fall back to
// plain text.
func highlightLines(lines []string, language string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = highlightLine(line, language)
	}
	return out
}

func highlightLine(line, language string) string {
	if language == "" || strings.TrimSpace(line) == "" {
		return codeStyle.Render(line)
	}
	var b strings.Builder
	if err := quick.Highlight(&b, line, language, "terminal256", "monokai"); err != nil {
		return codeStyle.Render(line)
	}
	return strings.TrimRight(b.String(), "\n")
}
