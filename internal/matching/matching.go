// Package matching suggests a category for a transaction from its note,
// using patterns learned from earlier choices.
package matching

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid rule")

// Rule assigns Category to every note that contains Pattern, ignoring case.
type Rule struct {
	ID       string
	Pattern  string
	Category string
}

func (r *Rule) Clone() *Rule {
	c := *r
	return &c
}

// Matches reports whether note contains the rule's pattern.
func (r *Rule) Matches(note string) bool {
	return strings.Contains(strings.ToLower(note), strings.ToLower(r.Pattern))
}

func newRule(pattern, cat string) (*Rule, error) {
	r := &Rule{Pattern: strings.TrimSpace(pattern), Category: strings.TrimSpace(cat)}

	if r.Pattern == "" {
		return nil, fmt.Errorf("%w: pattern is required", ErrInvalid)
	}

	if r.Category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalid)
	}

	return r, nil
}

// Best picks the rule with the longest pattern contained in note. Among equal
// lengths the later rule wins. It returns nil when nothing matches.
func Best(rules []*Rule, note string) *Rule {
	var best *Rule

	for _, r := range rules {
		if !r.Matches(note) {
			continue
		}

		if best == nil || len(r.Pattern) >= len(best.Pattern) {
			best = r
		}
	}

	return best
}
