package workflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/patternscope/patternscope/internal/workflow"
)

func urls(n int, host string) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, "https://"+host+"/user"+string(rune('a'+i)))
	}
	return out
}

func TestCleanProfileURLs(t *testing.T) {
	in := []string{"  https://x.com/a ", "", "   ", "https://x.com/b"}
	got := workflow.CleanProfileURLs(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 cleaned urls, got %d: %v", len(got), got)
	}
	if got[0] != "https://x.com/a" || got[1] != "https://x.com/b" {
		t.Fatalf("unexpected cleaned urls: %v", got)
	}
}

func TestValidateProfileURLs(t *testing.T) {
	tests := []struct {
		name    string
		urls    []string
		wantOK  bool
		wantMsg string
	}{
		{name: "SevenValidX", urls: urls(7, "x.com"), wantOK: true},
		{name: "FiveValidTwitter", urls: urls(5, "twitter.com"), wantOK: true},
		{name: "TenValid", urls: urls(10, "x.com"), wantOK: true},
		{name: "TooFew", urls: urls(3, "x.com"), wantOK: false, wantMsg: "at least 5"},
		{name: "TooMany", urls: urls(11, "x.com"), wantOK: false, wantMsg: "at most 10"},
		{name: "BadHost", urls: append(urls(5, "x.com"), "https://example.com/foo"), wantOK: false, wantMsg: "invalid profile URL: https://example.com/foo"},
		{name: "CaseSensitiveHost", urls: append(urls(5, "x.com"), "https://Twitter.com/foo"), wantOK: false, wantMsg: "invalid profile URL"},
		{name: "Duplicate", urls: append(urls(5, "x.com"), "https://x.com/usera"), wantOK: false, wantMsg: "duplicate profile URL"},
		{name: "Empty", urls: nil, wantOK: false, wantMsg: "at least 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := workflow.ValidateProfileURLs(tt.urls)
			if tt.wantOK != fe.Empty() {
				t.Fatalf("want ok=%v got errors=%v", tt.wantOK, fe)
			}
			if tt.wantMsg != "" {
				joined := strings.Join(fe["profile_urls"], "; ")
				if !strings.Contains(joined, tt.wantMsg) {
					t.Fatalf("expected message containing %q, got %q", tt.wantMsg, joined)
				}
			}
		})
	}
}

func TestValidateRawContent(t *testing.T) {
	short := strings.Repeat("a", 49)
	ok := strings.Repeat("a", 50)
	long := strings.Repeat("a", 10001)

	if _, fe := workflow.ValidateRawContent(short); fe.Empty() {
		t.Fatalf("expected error for %d chars", len(short))
	}
	if _, fe := workflow.ValidateRawContent(ok); !fe.Empty() {
		t.Fatalf("unexpected errors: %v", fe)
	}
	if _, fe := workflow.ValidateRawContent(long); fe.Empty() {
		t.Fatalf("expected error for %d chars", len(long))
	}
	// trimming happens before the bounds check
	padded := "  " + ok + "  "
	trimmed, fe := workflow.ValidateRawContent(padded)
	if !fe.Empty() {
		t.Fatalf("unexpected errors for padded content: %v", fe)
	}
	if trimmed != ok {
		t.Fatalf("expected trimmed content, got %q", trimmed)
	}
	// 49 meaningful chars padded to >50 must still fail
	if _, fe := workflow.ValidateRawContent("  " + short + "  "); fe.Empty() {
		t.Fatalf("expected error for padded short content")
	}
	// bounds count characters, not bytes: 40 CJK chars is 120 bytes but
	// still under the minimum, 50 of them is valid
	if _, fe := workflow.ValidateRawContent(strings.Repeat("分", 40)); fe.Empty() {
		t.Fatalf("expected error for 40 multi-byte chars")
	}
	if _, fe := workflow.ValidateRawContent(strings.Repeat("分", 50)); !fe.Empty() {
		t.Fatalf("unexpected errors for 50 multi-byte chars: %v", fe)
	}
}

func TestValidateTweetText(t *testing.T) {
	if _, fe := workflow.ValidateTweetText("   "); fe.Empty() {
		t.Fatalf("expected error for blank tweet")
	}
	if _, fe := workflow.ValidateTweetText(strings.Repeat("x", 281)); fe.Empty() {
		t.Fatalf("expected error for 281 chars")
	}
	text, fe := workflow.ValidateTweetText(" " + strings.Repeat("x", 280) + " ")
	if !fe.Empty() {
		t.Fatalf("unexpected errors: %v", fe)
	}
	if len(text) != 280 {
		t.Fatalf("expected trimmed 280 chars, got %d", len(text))
	}
	// 280 two-byte characters is a valid tweet, 281 is not
	if _, fe := workflow.ValidateTweetText(strings.Repeat("é", 280)); !fe.Empty() {
		t.Fatalf("unexpected errors for 280 multi-byte chars: %v", fe)
	}
	if _, fe := workflow.ValidateTweetText(strings.Repeat("é", 281)); fe.Empty() {
		t.Fatalf("expected error for 281 multi-byte chars")
	}
}

func TestValidFeedbackType(t *testing.T) {
	for _, ft := range []string{"use_this", "tweak", "regenerate"} {
		if !workflow.ValidFeedbackType(ft) {
			t.Fatalf("expected %q to be valid", ft)
		}
	}
	for _, ft := range []string{"", "USE_THIS", "like", "delete"} {
		if workflow.ValidFeedbackType(ft) {
			t.Fatalf("expected %q to be invalid", ft)
		}
	}
}

func TestFilterKeyPatterns(t *testing.T) {
	raw := []workflow.RawKeyPattern{
		{Name: "Hook", Explanation: "opens with a question", Example: "What if..."},
		{PatternName: "Contrarian", Description: "takes the opposite stance"},
		{Name: "NoExplanation"},
		{Explanation: "no name"},
		{Name: "  ", Explanation: "  "},
	}
	got := workflow.FilterKeyPatterns(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving patterns, got %d: %v", len(got), got)
	}
	if got[0].Name != "Hook" || got[0].Example != "What if..." {
		t.Fatalf("unexpected first pattern: %+v", got[0])
	}
	// alternate field spellings are accepted
	if got[1].Name != "Contrarian" || got[1].Explanation != "takes the opposite stance" {
		t.Fatalf("unexpected second pattern: %+v", got[1])
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		// Wednesday -> preceding Monday
		{time.Date(2025, 8, 27, 15, 30, 0, 0, time.UTC), time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)},
		// Monday maps to itself
		{time.Date(2025, 8, 25, 0, 0, 1, 0, time.UTC), time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)},
		// Sunday belongs to the week started 6 days earlier
		{time.Date(2025, 8, 31, 23, 59, 0, 0, time.UTC), time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := workflow.WeekStart(tt.in); !got.Equal(tt.want) {
			t.Fatalf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
