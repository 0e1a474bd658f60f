package sweetshop_test

import (
	"context"
	"sync"

	sweetshop "github.com/goliatone/go-sweetshop"
	"github.com/stretchr/testify/mock"
)

// MockAuthGateway implements sweetshop.AuthGateway
type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, email, password string) (*sweetshop.AccessToken, error) {
	args := m.Called(ctx, email, password)
	token, _ := args.Get(0).(*sweetshop.AccessToken)
	return token, args.Error(1)
}

func (m *MockAuthGateway) CurrentUser(ctx context.Context) (*sweetshop.Identity, error) {
	args := m.Called(ctx)
	identity, _ := args.Get(0).(*sweetshop.Identity)
	return identity, args.Error(1)
}

func (m *MockAuthGateway) Register(ctx context.Context, reg sweetshop.Registration) (*sweetshop.Identity, error) {
	args := m.Called(ctx, reg)
	identity, _ := args.Get(0).(*sweetshop.Identity)
	return identity, args.Error(1)
}

// eventRecorder collects session events
type eventRecorder struct {
	mu     sync.Mutex
	events []sweetshop.SessionEvent
}

func (r *eventRecorder) OnSessionEvent(_ context.Context, event sweetshop.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []sweetshop.SessionEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sweetshop.SessionEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// nopLogger silences the session and client logs in tests
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
