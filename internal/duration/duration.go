// Package duration converts free-text duration expressions such as
// "1h30m" or "2 days" into a count of seconds.
package duration

import (
	"regexp"
	"strconv"
	"strings"
)

type unitPattern struct {
	re     *regexp.Regexp
	factor int64
}

var unitPatterns = []unitPattern{
	{regexp.MustCompile(`([0-9]+)(seconds|second|secs|sec|s)`), 1},
	{regexp.MustCompile(`([0-9]+)(minutes|minute|mins|min|m)`), 60},
	{regexp.MustCompile(`([0-9]+)(hours|hour|hrs|hr|h)`), 60 * 60},
	{regexp.MustCompile(`([0-9]+)(days|day|dys|dy|d)`), 24 * 60 * 60},
}

// Parse returns the number of seconds expressed by text. Whitespace is
// ignored and matching is case-insensitive. The first quantity found
// for each unit contributes quantity times the unit factor; text that
// matches no unit contributes nothing. Parse never fails: unparseable
// input yields 0, which callers treat as immediate expiry.
func Parse(text string) int64 {
	cleaned := strings.ToLower(strings.ReplaceAll(text, " ", ""))

	var seconds int64
	for _, p := range unitPatterns {
		match := p.re.FindStringSubmatch(cleaned)
		if match == nil {
			continue
		}

		quantity, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		seconds += quantity * p.factor
	}

	return seconds
}
