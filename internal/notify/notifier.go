package notify

import (
	"context"
	"log/slog"
)

type Kind string

const (
	KindExpired       Kind = "expired"
	KindRefreshFailed Kind = "refresh_failed"
	KindExpiringSoon  Kind = "expiring_soon"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// PriorityFor maps a notification kind to its delivery priority. Expired
// and failed-refresh accounts need immediate owner action; a token merely
// approaching its warning window does not.
func PriorityFor(kind Kind) Priority {
	if kind == KindExpiringSoon {
		return PriorityMedium
	}
	return PriorityHigh
}

// Sink delivers credential lifecycle notifications. Delivery is
// fire-and-forget from the core's perspective: a Send failure is the
// sink's problem to log and must never fail a sweep.
type Sink interface {
	Send(ctx context.Context, accountID int64, kind Kind, payload map[string]any) error
}

type logSink struct{}

// NewLogSink returns a Sink that records notifications to the process
// log. The surrounding application substitutes its own delivery channel.
func NewLogSink() Sink {
	return logSink{}
}

func (logSink) Send(ctx context.Context, accountID int64, kind Kind, payload map[string]any) error {
	slog.Info("credential notification",
		"account_id", accountID,
		"kind", string(kind),
		"priority", string(PriorityFor(kind)),
		"payload", payload,
	)
	return nil
}
