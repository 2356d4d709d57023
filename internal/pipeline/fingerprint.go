package pipeline

import (
	"regexp"
	"sort"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases s, strips every character that is not a word
// character or whitespace, collapses whitespace runs to a single space, and
// trims. The empty string normalizes to itself.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint computes the canonical duplicate-detection key for a question.
// The text and each option are normalized independently; the options are then
// sorted so that option order never affects the key. Two questions with equal
// fingerprints are duplicates regardless of id or creation order.
func Fingerprint(text string, options []string) string {
	normalized := make([]string, len(options))
	for i, opt := range options {
		normalized[i] = Normalize(opt)
	}
	sort.Strings(normalized)
	return Normalize(text) + "::" + strings.Join(normalized, "|")
}
