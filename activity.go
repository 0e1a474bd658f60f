package sweetshop

import (
	"context"
	"time"
)

// SessionEventType enumerates the session outcomes listeners are told about.
type SessionEventType string

const (
	SessionEventInitialized      SessionEventType = "session.initialized"
	SessionEventRehydrateFailure SessionEventType = "session.rehydrate.failure"
	SessionEventLoginSuccess     SessionEventType = "session.login.success"
	SessionEventLoginFailure     SessionEventType = "session.login.failure"
	SessionEventRegisterSuccess  SessionEventType = "session.register.success"
	SessionEventRegisterFailure  SessionEventType = "session.register.failure"
	SessionEventLogout           SessionEventType = "session.logout"
)

// SessionEvent describes a single session transition or outcome.
type SessionEvent struct {
	Type       SessionEventType
	From       State
	To         State
	Identity   *Identity
	Message    string
	Err        error
	OccurredAt time.Time
}

// SessionListener consumes session events. Listeners run synchronously on
// the goroutine that caused the event and must not call back into the
// session that notified them.
type SessionListener interface {
	OnSessionEvent(ctx context.Context, event SessionEvent)
}

// SessionListenerFunc adapts a function to the SessionListener interface.
type SessionListenerFunc func(ctx context.Context, event SessionEvent)

// OnSessionEvent implements SessionListener.
func (f SessionListenerFunc) OnSessionEvent(ctx context.Context, event SessionEvent) {
	if f == nil {
		return
	}
	f(ctx, event)
}

// LogListener returns a listener that writes every event to logger.
func LogListener(logger Logger) SessionListener {
	if logger == nil {
		logger = defLogger{}
	}
	return SessionListenerFunc(func(_ context.Context, event SessionEvent) {
		args := []any{"event", event.Type, "from", event.From, "to", event.To}
		if event.Identity != nil {
			args = append(args, "user_id", event.Identity.ID)
		}
		if event.Err != nil {
			args = append(args, "error", event.Err)
			logger.Warn("session event", args...)
			return
		}
		logger.Debug("session event", args...)
	})
}
