package assimilate

import (
	"fmt"
	"path"
	"strings"
)

// Category is the closed set of destinations a section can be filed into.
// Lower values win score ties.
type Category int

const (
	Rules Category = iota
	Workflows
	Skills
	Docs
)

// Categories lists every category in precedence order.
var Categories = []Category{Rules, Workflows, Skills, Docs}

func (c Category) String() string {
	switch c {
	case Rules:
		return "rules"
	case Workflows:
		return "workflows"
	case Skills:
		return "skills"
	case Docs:
		return "docs"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

func (c Category) Valid() bool {
	return c >= Rules && c <= Docs
}

// Precedence is the tie-break rank; lower ranks win.
func (c Category) Precedence() int {
	return int(c)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rules", "rule":
		return Rules, nil
	case "workflows", "workflow":
		return Workflows, nil
	case "skills", "skill":
		return Skills, nil
	case "docs", "doc":
		return Docs, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Layout maps every category to the slash-separated directory, relative to
// the project root, that receives its artifacts.
type Layout map[Category]string

func DefaultLayout() Layout {
	return Layout{
		Rules:     ".agent/rules",
		Workflows: ".agent/workflows",
		Skills:    ".agent/skills",
		Docs:      "docs/imported",
	}
}

// Dir returns the directory for c, falling back to the default layout for
// categories the receiver leaves unset.
func (l Layout) Dir(c Category) string {
	if dir, ok := l[c]; ok && dir != "" {
		return path.Clean(dir)
	}
	return DefaultLayout()[c]
}

func (l Layout) Validate() error {
	for c := range l {
		if !c.Valid() {
			return fmt.Errorf("layout has invalid category %d", int(c))
		}
	}
	for _, c := range Categories {
		dir := l.Dir(c)
		if path.IsAbs(dir) || dir == "." || dir == ".." || strings.HasPrefix(dir, "../") {
			return fmt.Errorf("layout directory for %s must be relative to the project root: %q", c, dir)
		}
	}
	return nil
}
