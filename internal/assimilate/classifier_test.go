package assimilate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleRules(t *testing.T) RuleSet {
	t.Helper()
	rules, err := NewRuleSet(
		CategoryRule{Category: Rules, Keywords: []string{"always", "must", "never"}},
		CategoryRule{Category: Workflows, Keywords: []string{"step", "deploy"}},
	)
	require.NoError(t, err)
	return rules
}

func TestClassify_Example(t *testing.T) {
	rules := exampleRules(t)

	first := Classify(Section{Title: "Always validate input", Body: "Use strict typing."}, rules)
	assert.Equal(t, Rules, first.Category)
	assert.Equal(t, 1, first.Score)

	second := Classify(Section{Title: "Deploy steps", Body: "1. build\n2. push", Order: 1}, rules)
	assert.Equal(t, Workflows, second.Category)
	assert.Equal(t, 2, second.Score)
}

func TestClassify_CountsEveryOccurrence(t *testing.T) {
	rules := exampleRules(t)

	c := Classify(Section{Title: "never", Body: "NEVER never Never. Deploy."}, rules)
	assert.Equal(t, Rules, c.Category)
	assert.Equal(t, 4, c.Score)
}

func TestClassify_NoMatchDefaultsToDocs(t *testing.T) {
	for _, rules := range []RuleSet{exampleRules(t), DefaultRuleSet(), {}} {
		c := Classify(Section{Title: "Lunch", Body: "Pizza on fridays."}, rules)
		assert.Equal(t, Docs, c.Category)
		assert.Equal(t, 0, c.Score)
		assert.True(t, c.Defaulted())
	}
}

func TestClassify_EmptySectionLandsInDocs(t *testing.T) {
	c := Classify(Section{}, DefaultRuleSet())
	assert.Equal(t, Docs, c.Category)
}

func TestClassify_TieBreakByPrecedence(t *testing.T) {
	rules := MustRuleSet(
		CategoryRule{Category: Docs, Keywords: []string{"alpha"}},
		CategoryRule{Category: Skills, Keywords: []string{"beta"}},
		CategoryRule{Category: Workflows, Keywords: []string{"gamma"}},
		CategoryRule{Category: Rules, Keywords: []string{"delta"}},
	)

	tests := []struct {
		text string
		want Category
	}{
		{"alpha beta", Skills},
		{"alpha beta gamma", Workflows},
		{"alpha beta gamma delta", Rules},
		{"alpha alpha beta", Docs},
	}
	for _, tt := range tests {
		c := Classify(Section{Body: tt.text}, rules)
		assert.Equal(t, tt.want, c.Category, tt.text)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	rules := DefaultRuleSet()
	s := Section{Title: "CLI usage", Body: "Run the script with these flags, then deploy."}

	first := Classify(s, rules)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Classify(s, rules))
	}
}

func TestNewRuleSet_Normalizes(t *testing.T) {
	rules, err := NewRuleSet(
		CategoryRule{Category: Rules, Keywords: []string{" Must ", "must", "", "NEVER"}},
		CategoryRule{Category: Rules, Keywords: []string{"never", "lint"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"must", "never", "lint"}, rules.Keywords(Rules))
	assert.Nil(t, rules.Keywords(Docs))

	_, err = NewRuleSet(CategoryRule{Category: Category(42)})
	assert.Error(t, err)
}

func TestRuleSet_IsImmutable(t *testing.T) {
	rules := exampleRules(t)
	copied := rules.Rules()
	copied[0].Keywords[0] = "mutated"

	assert.Equal(t, "always", rules.Keywords(Rules)[0])
}

func TestRuleSet_Extend(t *testing.T) {
	base := exampleRules(t)
	extended, err := base.Extend(map[Category][]string{Skills: {"Makefile"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"makefile"}, extended.Keywords(Skills))
	assert.Nil(t, base.Keywords(Skills))
	assert.Equal(t, Skills, Classify(Section{Body: "see the makefile"}, extended).Category)
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCategory("misc")
	assert.Error(t, err)
}

func TestLayout_Validate(t *testing.T) {
	ok := DefaultLayout()
	ok[Docs] = "..notes/imported"
	assert.NoError(t, ok.Validate())

	for _, dir := range []string{"/abs", "..", "../outside", "docs/../../up", "."} {
		l := DefaultLayout()
		l[Docs] = dir
		assert.Error(t, l.Validate(), dir)
	}
}
