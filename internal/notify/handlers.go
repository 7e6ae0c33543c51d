package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/patternscope/patternscope/internal/jobs"
)

// Handlers returns the job handlers for every notification type, wired to
// the given Notifier.
func Handlers(n Notifier) map[string]jobs.Handler {
	return map[string]jobs.Handler{
		TypeSubmission: func(ctx context.Context, j *jobs.Job) error {
			var p SubmissionPayload
			if err := json.Unmarshal(j.Payload, &p); err != nil {
				return fmt.Errorf("decode submission payload: %w", err)
			}
			return n.Send(ctx, FormatSubmission(p))
		},
		TypeContentIdea: func(ctx context.Context, j *jobs.Job) error {
			var p ContentIdeaPayload
			if err := json.Unmarshal(j.Payload, &p); err != nil {
				return fmt.Errorf("decode content idea payload: %w", err)
			}
			return n.Send(ctx, FormatContentIdea(p))
		},
		TypeFeedback: func(ctx context.Context, j *jobs.Job) error {
			var p FeedbackPayload
			if err := json.Unmarshal(j.Payload, &p); err != nil {
				return fmt.Errorf("decode feedback payload: %w", err)
			}
			return n.Send(ctx, FormatFeedback(p))
		},
	}
}
