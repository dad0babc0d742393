package orchestrator

import (
	"fmt"
	"strings"
)

var lookupKeywords = map[string]bool{"to": true, "email": true}

// NeedsContactLookup reports whether an email request names its recipient
// without an address.
func NeedsContactLookup(utterance string) bool {
	return strings.Contains(strings.ToLower(utterance), "send") && !strings.Contains(utterance, "@")
}

// ContactName returns the first token that follows a "to" or "email" keyword
// and is not itself a keyword, so "send an email to John" yields "John".
func ContactName(utterance string) (string, bool) {
	words := strings.Fields(utterance)
	for i := 0; i+1 < len(words); i++ {
		if !lookupKeywords[strings.ToLower(words[i])] {
			continue
		}
		if next := words[i+1]; !lookupKeywords[strings.ToLower(next)] {
			return next, true
		}
	}
	return "", false
}

// LookupInstruction is sent to the contact handler for one name.
func LookupInstruction(name string) string {
	return fmt.Sprintf("Get contact information for %s", name)
}
