// Package workflow holds the business rules of the submission/content/
// feedback pipeline: input validation, key-pattern filtering and the
// weekly-limit calendar math. Handlers call these before touching storage so
// the server stays the source of truth regardless of client pre-validation.
package workflow

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patternscope/patternscope/pkg/models"
)

const (
	MinProfileURLs = 5
	MaxProfileURLs = 10
	MinContentLen  = 50
	MaxContentLen  = 10000
	MaxTweetLen    = 280
)

// allowedHosts are matched as case-sensitive substrings, same as the
// original intake rule.
var allowedHosts = []string{"twitter.com", "x.com"}

// FieldErrors collects validation messages addressable per field.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// CleanProfileURLs trims entries and drops blanks; counting happens on the
// cleaned list.
func CleanProfileURLs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// ValidateProfileURLs checks count bounds, the host allowlist and duplicates
// on an already-cleaned list.
func ValidateProfileURLs(urls []string) FieldErrors {
	fe := FieldErrors{}
	if len(urls) < MinProfileURLs {
		fe.Add("profile_urls", fmt.Sprintf("at least %d profile URLs are required", MinProfileURLs))
	}
	if len(urls) > MaxProfileURLs {
		fe.Add("profile_urls", fmt.Sprintf("at most %d profile URLs are allowed", MaxProfileURLs))
	}

	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if !hostAllowed(u) {
			fe.Add("profile_urls", fmt.Sprintf("invalid profile URL: %s", u))
		}
		if seen[u] {
			fe.Add("profile_urls", fmt.Sprintf("duplicate profile URL: %s", u))
		}
		seen[u] = true
	}
	return fe
}

func hostAllowed(url string) bool {
	for _, h := range allowedHosts {
		if strings.Contains(url, h) {
			return true
		}
	}
	return false
}

// ValidateRawContent trims and bounds-checks a content idea body. Bounds
// count characters, not bytes.
func ValidateRawContent(s string) (string, FieldErrors) {
	fe := FieldErrors{}
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < MinContentLen {
		fe.Add("raw_content", fmt.Sprintf("content must be at least %d characters", MinContentLen))
	}
	if n > MaxContentLen {
		fe.Add("raw_content", fmt.Sprintf("content must be at most %d characters", MaxContentLen))
	}
	return s, fe
}

// ValidateTweetText trims and bounds-checks tweet text. The 280 limit counts
// characters, not bytes.
func ValidateTweetText(s string) (string, FieldErrors) {
	fe := FieldErrors{}
	s = strings.TrimSpace(s)
	if s == "" {
		fe.Add("tweet_text", "tweet text is required")
	}
	if utf8.RuneCountInString(s) > MaxTweetLen {
		fe.Add("tweet_text", fmt.Sprintf("tweet text must be at most %d characters", MaxTweetLen))
	}
	return s, fe
}

func ValidFeedbackType(t string) bool {
	switch t {
	case models.FeedbackUseThis, models.FeedbackTweak, models.FeedbackRegenerate:
		return true
	}
	return false
}

// RawKeyPattern is the loosely-shaped pattern payload admins submit. Older
// clients send pattern_name/description instead of name/explanation.
type RawKeyPattern struct {
	Name        string `json:"name"`
	PatternName string `json:"pattern_name"`
	Explanation string `json:"explanation"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// FilterKeyPatterns keeps entries that carry both a name and an explanation
// under either field spelling. The caller rejects the request when nothing
// survives.
func FilterKeyPatterns(raw []RawKeyPattern) []models.KeyPattern {
	out := make([]models.KeyPattern, 0, len(raw))
	for _, p := range raw {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = strings.TrimSpace(p.PatternName)
		}
		expl := strings.TrimSpace(p.Explanation)
		if expl == "" {
			expl = strings.TrimSpace(p.Description)
		}
		if name == "" || expl == "" {
			continue
		}
		out = append(out, models.KeyPattern{
			Name:        name,
			Explanation: expl,
			Example:     strings.TrimSpace(p.Example),
		})
	}
	return out
}

// WeekStart returns 00:00 UTC on the Monday of t's week, the boundary at
// which weekly submission counters reset.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	days := int(t.Weekday()) - int(time.Monday)
	if days < 0 {
		days += 7
	}
	y, m, d := t.AddDate(0, 0, -days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
