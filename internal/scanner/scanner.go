// Package scanner implements the cheap regex screen that runs on page
// titles before any block fetching or AI detection happens.
package scanner

import "regexp"

// Match categories reported by the fast-path scan. The AI detector remains
// the source of truth for multi-category results; these tags only need to
// agree with its vocabulary.
const (
	CategoryEmail      = "email"
	CategorySSN        = "ssn"
	CategoryPhone      = "phone"
	CategoryCreditCard = "credit_card"
)

// Result holds the outcome of a fast-path scan
type Result struct {
	// Detected reports whether any pattern matched
	Detected bool
	// Categories holds the single matched category; the fast path stops at
	// the first hit
	Categories []string
}

// scanRule pairs a category with the patterns that detect it
type scanRule struct {
	category string
	patterns []*regexp.Regexp
}

// scanRules is the ordered list of fast-path rules; first match wins.
// Order matters: the SSN pattern must run before the phone pattern so a
// 3-2-4 digit group is never reported as a phone number.
var scanRules = []scanRule{
	{
		category: CategoryEmail,
		patterns: compileAll(
			`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
		),
	},
	{
		category: CategorySSN,
		patterns: compileAll(
			`\b\d{3}-\d{2}-\d{4}\b`,
			`\b\d{3}\s\d{2}\s\d{4}\b`,
		),
	},
	{
		category: CategoryPhone,
		patterns: compileAll(
			`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`,
			`\b\+?1?[-.\s]?\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`,
		),
	},
	{
		category: CategoryCreditCard,
		patterns: compileAll(
			`\b\d{13,16}\b`,
			`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{1,4}\b`,
		),
	},
}

// Scan applies the fast-path rules to the given text in precedence order
// and returns the first matching category. It returns ok=false when the
// text is empty or nothing matches.
func Scan(text string) (Result, bool) {
	if text == "" {
		return Result{}, false
	}

	for _, rule := range scanRules {
		if matchesAny(rule.patterns, text) {
			return Result{
				Detected:   true,
				Categories: []string{rule.category},
			}, true
		}
	}

	return Result{}, false
}

// compileAll compiles multiple regex patterns, panicking on invalid patterns
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return compiled
}

// matchesAny returns true if the input matches any of the compiled patterns
func matchesAny(patterns []*regexp.Regexp, input string) bool {
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}

	return false
}
