package markup

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Escaped markup is decoded and stripped again until the text stops
// changing; this bounds the rounds for deeply nested entity escapes.
const maxRounds = 5

var strictPolicy = bluemonday.StrictPolicy()

// Strip removes every HTML element from s and returns plain text with
// entities decoded. Markup hidden behind entity escapes does not survive.
func Strip(s string) string {
	for i := 0; i < maxRounds; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			return next
		}
		s = next
	}
	return strictPolicy.Sanitize(s)
}
