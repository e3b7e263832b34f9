package panel

import (
	"context"
	"time"

	"umspanel/internal/audit"
	"umspanel/internal/metrics"
	"umspanel/internal/session"
)

// NewFactory returns a Factory whose controllers call auth, animate the
// progress bars after barDelay, and report every submission to metrics and,
// when pub is not nil, to the audit trail.
func NewFactory(auth session.Authenticator, barDelay time.Duration, pub *audit.Publisher) Factory {
	return func(sessionID string) *session.Controller {
		observe := func(res session.Result) {
			metrics.ObserveLogin(string(res.Outcome), res.Duration, res.Outcome != session.OutcomeInvalid)
			if pub == nil {
				return
			}
			pub.Publish(context.Background(), audit.Event{
				SessionID:  sessionID,
				UserType:   res.UserType,
				UserID:     res.UserID,
				Outcome:    string(res.Outcome),
				Message:    res.Message,
				DurationMS: res.Duration.Milliseconds(),
			})
		}
		return session.New(auth, session.WithBarDelay(barDelay), session.WithObserver(observe))
	}
}
