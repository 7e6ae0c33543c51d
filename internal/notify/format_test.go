package notify

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/patternscope/patternscope/internal/jobs"
)

func TestFormatSubmission(t *testing.T) {
	p := SubmissionPayload{
		SubmissionID: 7,
		UserEmail:    "user@example.com",
		ProfileURLs: []string{
			"https://x.com/a", "https://x.com/b", "https://x.com/c",
			"https://x.com/d", "https://x.com/e",
		},
		ExpectedDeliveryAt: 1700000000000,
	}
	got := FormatSubmission(p)

	for _, want := range []string{"user@example.com", "*Submission ID:* 7", "*Profiles:* 5", "(+2 more)"} {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "https://x.com/d") {
		t.Errorf("message should only preview the first three URLs:\n%s", got)
	}
}

func TestFormatSubmissionNoOverflow(t *testing.T) {
	p := SubmissionPayload{
		UserEmail:   "user@example.com",
		ProfileURLs: []string{"https://x.com/a", "https://x.com/b", "https://x.com/c"},
	}
	if got := FormatSubmission(p); strings.Contains(got, "more") {
		t.Errorf("three URLs should not produce an overflow marker:\n%s", got)
	}
}

func TestFormatContentIdeaTruncates(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := FormatContentIdea(ContentIdeaPayload{IdeaID: 3, UserEmail: "u@e.com", RawContent: long})

	if !strings.Contains(got, "*Content Length:* 300 characters") {
		t.Errorf("message missing full length:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("x", 200)+"...") {
		t.Errorf("preview should be truncated to 200 chars:\n%s", got)
	}
	if strings.Contains(got, strings.Repeat("x", 201)) {
		t.Errorf("preview too long:\n%s", got)
	}
}

func TestFormatContentIdeaTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 300)
	got := FormatContentIdea(ContentIdeaPayload{IdeaID: 4, UserEmail: "u@e.com", RawContent: long})

	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8:\n%s", got)
	}
	if !strings.Contains(got, "*Content Length:* 300 characters") {
		t.Errorf("length should count characters, not bytes:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("é", 200)+"...") {
		t.Errorf("preview should keep 200 whole characters:\n%s", got)
	}
}

func TestFormatFeedbackNotesFallback(t *testing.T) {
	got := FormatFeedback(FeedbackPayload{TweetID: 9, UserEmail: "u@e.com", FeedbackType: "tweak", TweetText: "draft"})
	if !strings.Contains(got, "No notes provided") {
		t.Errorf("empty notes should fall back:\n%s", got)
	}

	got = FormatFeedback(FeedbackPayload{TweetID: 9, UserEmail: "u@e.com", FeedbackType: "tweak", TweetText: "draft", FeedbackNotes: "shorter please"})
	if !strings.Contains(got, "shorter please") {
		t.Errorf("notes should appear verbatim:\n%s", got)
	}
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (r *recordingNotifier) Send(ctx context.Context, text string) error {
	r.sent = append(r.sent, text)
	return r.err
}

func TestHandlersDispatch(t *testing.T) {
	rec := &recordingNotifier{}
	handlers := Handlers(rec)

	payload, _ := json.Marshal(FeedbackPayload{TweetID: 1, UserEmail: "u@e.com", FeedbackType: "use_this", TweetText: "hi"})
	j := &jobs.Job{Type: TypeFeedback, Payload: payload}
	if err := handlers[TypeFeedback](context.Background(), j); err != nil {
		t.Fatalf("feedback handler: %v", err)
	}
	if len(rec.sent) != 1 || !strings.Contains(rec.sent[0], "use_this") {
		t.Fatalf("unexpected sends: %v", rec.sent)
	}

	j.Payload = json.RawMessage(`{not json`)
	if err := handlers[TypeFeedback](context.Background(), j); err == nil {
		t.Fatal("malformed payload should error")
	}
}
