package hybrid

import (
	"regexp"
	"strings"
)

var (
	rePastReference = regexp.MustCompile(`(?i)\b(did we|when did|how did)\b`)
	reMemoryVerb     = regexp.MustCompile(`(?i)\b(remember|recall|previously|discussed)\b`)
	reSearchVerb     = regexp.MustCompile(`(?i)\b(search|find|look up|grep|locate)\b`)
	reScopeTag       = regexp.MustCompile(`(?i)(session:|project memory)`)
)

// ShouldRetrieve decides whether a query warrants a backend fan-out: true
// when it exhibits a past-reference phrase, a memory verb, a search verb,
// has 12 or more words, or carries an explicit scope tag.
func ShouldRetrieve(query string) bool {
	if rePastReference.MatchString(query) || reMemoryVerb.MatchString(query) ||
		reSearchVerb.MatchString(query) || reScopeTag.MatchString(query) {
		return true
	}
	words := strings.Fields(query)
	return len(words) >= 12
}
