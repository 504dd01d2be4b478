package classifier

import (
	"regexp"
	"strings"

	"argos-engine/pkg/markup"
)

const maxMessageRunes = 300

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AIza[0-9A-Za-z_\-]{10,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_\-]{10,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=\-]+`),
	regexp.MustCompile(`(?i)(api[_-]?key|access[_-]?token|token|secret|password|authorization)\s*[=:]\s*\S+`),
	regexp.MustCompile(`(?i)[?&](key|token)=[^&\s]+`),
}

// Stack dumps start at these markers; everything after them is dropped.
var traceMarkers = []string{"Traceback", "goroutine ", "panic:", "\n\tat ", "Stack trace"}

// Sanitize makes a message safe to show to a caller: no markup, no stack
// traces, no credentials, bounded length. It never returns an empty string.
func Sanitize(msg string) string {
	s := markup.Strip(msg)

	for _, marker := range traceMarkers {
		if idx := strings.Index(s, marker); idx != -1 {
			s = s[:idx]
		}
	}
	for _, re := range secretPatterns {
		s = re.ReplaceAllString(s, "[redacted]")
	}

	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxMessageRunes {
		s = string(r[:maxMessageRunes]) + "..."
	}
	if s == "" {
		return msgUnknown
	}
	return s
}
