package assimilate

import (
	"fmt"
	"slices"
	"strings"
)

// CategoryRule is the keyword set that votes for one category.
type CategoryRule struct {
	Category Category
	Keywords []string
}

// RuleSet is an immutable, normalized collection of category rules. Build it
// once with NewRuleSet and share it by value.
type RuleSet struct {
	rules []CategoryRule
}

// NewRuleSet lower-cases and deduplicates keywords, merging rules that name
// the same category.
func NewRuleSet(rules ...CategoryRule) (RuleSet, error) {
	merged := make(map[Category][]string)
	for _, r := range rules {
		if !r.Category.Valid() {
			return RuleSet{}, fmt.Errorf("rule has invalid category %d", int(r.Category))
		}
		merged[r.Category] = append(merged[r.Category], r.Keywords...)
	}

	set := RuleSet{}
	for _, c := range Categories {
		keywords, ok := merged[c]
		if !ok {
			continue
		}
		set.rules = append(set.rules, CategoryRule{Category: c, Keywords: normalizeKeywords(keywords)})
	}
	return set, nil
}

// MustRuleSet is NewRuleSet for rule tables known to be valid.
func MustRuleSet(rules ...CategoryRule) RuleSet {
	set, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return set
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{Category: Rules, Keywords: []string{
			"always", "never", "must", "style", "convention", "standard",
			"protocol", "policy", "lint", "formatting", "security",
		}},
		{Category: Workflows, Keywords: []string{
			"step", "guide", "process", "workflow", "how-to", "deploy",
			"setup", "run", "execution", "plan", "roadmap",
		}},
		{Category: Skills, Keywords: []string{
			"command", "cli", "tool", "usage", "utility", "script",
			"automation", "flags", "arguments", "terminal",
		}},
		{Category: Docs, Keywords: []string{
			"overview", "architecture", "introduction", "background",
			"context", "diagram", "concept", "summary",
		}},
	}
}

func DefaultRuleSet() RuleSet {
	return MustRuleSet(DefaultRules()...)
}

// Rules returns a copy of the normalized rules in precedence order.
func (s RuleSet) Rules() []CategoryRule {
	out := make([]CategoryRule, len(s.rules))
	for i, r := range s.rules {
		out[i] = CategoryRule{Category: r.Category, Keywords: slices.Clone(r.Keywords)}
	}
	return out
}

// Keywords returns the keywords configured for c.
func (s RuleSet) Keywords(c Category) []string {
	for _, r := range s.rules {
		if r.Category == c {
			return slices.Clone(r.Keywords)
		}
	}
	return nil
}

// Extend returns a new RuleSet with extra keywords appended per category.
func (s RuleSet) Extend(extra map[Category][]string) (RuleSet, error) {
	rules := s.Rules()
	for c, keywords := range extra {
		rules = append(rules, CategoryRule{Category: c, Keywords: keywords})
	}
	return NewRuleSet(rules...)
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Classification is the derived verdict for one section.
type Classification struct {
	Section  Section
	Category Category
	Score    int
}

// Defaulted reports whether no keyword matched and the section was filed
// under Docs as the fallback bucket.
func (c Classification) Defaulted() bool {
	return c.Score == 0
}

// Classify scores the section against every rule. Each keyword occurrence in
// title and body counts once; the highest score wins, ties go to the
// higher-precedence category, and a zero score always yields Docs.
func Classify(section Section, rules RuleSet) Classification {
	text := strings.ToLower(section.Title + "\n" + section.Body)

	best := Classification{Section: section, Category: Docs}
	for _, r := range rules.rules {
		score := 0
		for _, k := range r.Keywords {
			score += strings.Count(text, k)
		}
		if score > best.Score || (score == best.Score && score > 0 && r.Category.Precedence() < best.Category.Precedence()) {
			best.Category = r.Category
			best.Score = score
		}
	}

	if best.Score == 0 {
		best.Category = Docs
	}
	return best
}
