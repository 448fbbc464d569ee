package orchestrator

import (
	"regexp"
)

// ApprovalToken is the literal a reviewer appends to declare a draft
// publication-ready (spec ยง4.5).
const ApprovalToken = "@@SIGNED OFF@@"

var approvalTokenPattern = regexp.MustCompile(`(?i)@@SIGNED OFF@@`)

var negationWordPattern = regexp.MustCompile(`(?i)\b(not|no|never)\b`)

// IsApproved reports whether content contains an unnegated approval
// token. Go's RE2 engine has no lookbehind, so the PCRE expression in
// the spec (negative lookbehind for NOT/NO/NEVER before the token) is
// emulated with a forward scan: for every case-insensitive occurrence
// of the token, the whole clause since the previous occurrence (or the
// start of the text) is searched for a whole-word negation, not just
// the word immediately adjacent to the token. This catches phrasing
// like "We do NOT consider this @@SIGNED OFF@@" where the negation sits
// several words before the token.
func IsApproved(content string) bool {
	matches := approvalTokenPattern.FindAllStringIndex(content, -1)
	lastEnd := 0
	for _, m := range matches {
		if !isNegated(content[lastEnd:m[0]]) {
			return true
		}
		lastEnd = m[1]
	}
	return false
}

// isNegated reports whether segment contains a whole-word NOT/NO/NEVER.
func isNegated(segment string) bool {
	return negationWordPattern.MatchString(segment)
}
