// Package pathguard turns user- or content-derived strings into safe path
// components and verifies that joined paths stay inside a project root.
package pathguard

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	DefaultFallback  = "antigravity-project"
	DefaultMaxLength = 50
)

var ErrOutsideRoot = errors.New("path resolves outside project root")

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)
	driveLetter   = regexp.MustCompile(`^[a-zA-Z]:`)
)

// Guard holds the sanitization parameters. The zero value is not usable;
// use New or Default.
type Guard struct {
	Fallback  string
	MaxLength int
}

func New(fallback string, maxLength int) Guard {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return Guard{Fallback: fallback, MaxLength: maxLength}
}

func Default() Guard {
	return New(DefaultFallback, DefaultMaxLength)
}

// Sanitize returns a single safe path component for name, or the fallback
// token when nothing usable remains.
func (g Guard) Sanitize(name string) string {
	clean, _ := g.Clean(name)
	return clean
}

// Clean is Sanitize that also reports whether the fallback was substituted.
func (g Guard) Clean(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || isRooted(trimmed) {
		return g.Fallback, false
	}

	clean := strings.ReplaceAll(trimmed, "..", "")
	clean = whitespaceRun.ReplaceAllString(clean, "_")
	clean = disallowed.ReplaceAllString(clean, "")

	if len(clean) > g.MaxLength {
		clean = clean[:g.MaxLength]
	}
	clean = strings.Trim(clean, "_-")

	if clean == "" || !containedComponent(clean) {
		return g.Fallback, false
	}
	return clean, true
}

// Sanitize applies the default guard.
func Sanitize(name string) string {
	return Default().Sanitize(name)
}

func isRooted(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\`) || driveLetter.MatchString(s)
}

// containedComponent checks the cleaned value against a stand-in root the
// same way Resolve checks real paths.
func containedComponent(component string) bool {
	base := filepath.Join(string(filepath.Separator), "base")
	_, err := Resolve(base, component)
	return err == nil
}

// Resolve joins rel onto root and returns the absolute result only when it
// lies strictly inside root.
func Resolve(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || isRooted(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	joined := filepath.Join(absRoot, filepath.FromSlash(rel))
	within, err := filepath.Rel(absRoot, joined)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	if within == "." || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	return joined, nil
}
