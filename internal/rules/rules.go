package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule pairs a keyword pattern with the category (and optionally brand) it
// implies when the pattern appears in label text.
type Rule struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
}

// Match is the outcome of classifying a block of text.
type Match struct {
	Category string
	Brand    string
	Model    string
	Signals  []string
}

// Classifier holds compiled keyword rules.
type Classifier struct {
	rules []compiledRule
}

type compiledRule struct {
	re       *regexp.Regexp
	category string
	brand    string
}

var modelPattern = regexp.MustCompile(`(?i)\bA\d{4}\b`)

// NewClassifier compiles the rule set. Patterns are matched
// case-insensitively.
func NewClassifier(rules []Rule) (*Classifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", rule.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, category: rule.Category, brand: rule.Brand})
	}
	return &Classifier{rules: compiled}, nil
}

// ClassifyFromText finds the rule with the most pattern hits in text and
// returns its category and brand, plus any model token found. Ties keep the
// earlier rule. When allowed is non-empty, rules for other categories are
// skipped.
func (c *Classifier) ClassifyFromText(text string, allowed []string) Match {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, category := range allowed {
		allowedSet[category] = struct{}{}
	}

	best := Match{}
	for _, rule := range c.rules {
		if len(allowedSet) > 0 {
			if _, ok := allowedSet[rule.category]; !ok {
				continue
			}
		}
		signals := rule.re.FindAllString(text, -1)
		if len(signals) > len(best.Signals) {
			best = Match{
				Category: rule.category,
				Brand:    rule.brand,
				Model:    modelPattern.FindString(text),
				Signals:  signals,
			}
		}
	}
	return best
}

// DonateFriendly reports whether a canonical category is routinely accepted
// by donation centers.
func DonateFriendly(category string) bool {
	switch strings.ToLower(category) {
	case "books", "clothing", "toys":
		return true
	}
	return false
}
