package notify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Job types routed to this package's handlers.
const (
	TypeSubmission  = "notify.submission"
	TypeContentIdea = "notify.content_idea"
	TypeFeedback    = "notify.feedback"
)

type SubmissionPayload struct {
	SubmissionID       int64    `json:"submission_id"`
	UserEmail          string   `json:"user_email"`
	ProfileURLs        []string `json:"profile_urls"`
	ExpectedDeliveryAt int64    `json:"expected_delivery_at"`
}

type ContentIdeaPayload struct {
	IdeaID     int64  `json:"idea_id"`
	UserEmail  string `json:"user_email"`
	RawContent string `json:"raw_content"`
}

type FeedbackPayload struct {
	TweetID       int64  `json:"tweet_id"`
	UserEmail     string `json:"user_email"`
	FeedbackType  string `json:"feedback_type"`
	FeedbackNotes string `json:"feedback_notes"`
	TweetText     string `json:"tweet_text"`
}

const previewLen = 200

func FormatSubmission(p SubmissionPayload) string {
	preview := strings.Join(truncateList(p.ProfileURLs, 3), ", ")
	if extra := len(p.ProfileURLs) - 3; extra > 0 {
		preview += fmt.Sprintf("... (+%d more)", extra)
	}

	return fmt.Sprintf(
		"*New Profile Submission*\n\n*User:* %s\n*Submission ID:* %d\n*Profiles:* %d\n*URLs:* %s\n*Expected Delivery:* %s",
		p.UserEmail, p.SubmissionID, len(p.ProfileURLs), preview, formatTime(p.ExpectedDeliveryAt))
}

func FormatContentIdea(p ContentIdeaPayload) string {
	return fmt.Sprintf(
		"*New Content Idea*\n\n*User:* %s\n*Idea ID:* %d\n*Content Length:* %d characters\n\n*Preview:*\n%s",
		p.UserEmail, p.IdeaID, utf8.RuneCountInString(p.RawContent), truncate(p.RawContent, previewLen))
}

func FormatFeedback(p FeedbackPayload) string {
	notes := p.FeedbackNotes
	if notes == "" {
		notes = "No notes provided"
	}

	return fmt.Sprintf(
		"*Tweet Feedback Received*\n\n*User:* %s\n*Tweet ID:* %d\n*Feedback Type:* %s\n\n*Tweet:*\n%s\n\n*Feedback Notes:*\n%s",
		p.UserEmail, p.TweetID, p.FeedbackType, truncate(p.TweetText, previewLen), notes)
}

// truncate cuts after n characters, never mid-rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func truncateList(l []string, n int) []string {
	if len(l) <= n {
		return l
	}
	return l[:n]
}

func formatTime(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04 UTC")
}
