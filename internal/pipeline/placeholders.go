package pipeline

import "regexp"

// placeholderPatterns is the single authoritative denylist of template-leakage
// markers. Every caller that needs placeholder detection goes through
// scanPlaceholders; the patterns are never duplicated inline elsewhere.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmethodology [a-d]\b`),
	regexp.MustCompile(`(?i)\bapproach [a-d]\b`),
	regexp.MustCompile(`(?i)\boption [a-d] for\b`),
	regexp.MustCompile(`(?i)placeholder`),
	regexp.MustCompile(`(?i)cutting-edge`),
	regexp.MustCompile(`(?i)state-of-the-art`),
	regexp.MustCompile(`(?i)\binnovative\b`),
	regexp.MustCompile(`(?i)\badvanced\b`),
	regexp.MustCompile(`(?i)\[country\]`),
	regexp.MustCompile(`(?i)\[capital\]`),
}

// scanPlaceholders returns the patterns matched anywhere in s, as their
// source expressions, for inclusion in issue strings.
func scanPlaceholders(s string) []string {
	var matched []string
	for _, re := range placeholderPatterns {
		if re.MatchString(s) {
			matched = append(matched, re.String())
		}
	}
	return matched
}
