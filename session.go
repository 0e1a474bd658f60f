package sweetshop

import (
	"context"
	"sync"
	"time"
)

const (
	defaultLoginFailure    = "Login failed"
	defaultRegisterFailure = "Registration failed"
)

// Snapshot is a consistent read of the session at one instant.
type Snapshot struct {
	State     State     `json:"state"`
	Identity  *Identity `json:"identity,omitempty"`
	Loading   bool      `json:"loading"`
	LastError string    `json:"last_error,omitempty"`
}

// IsAdmin is the administrator capability as asserted by the remote API.
func (s Snapshot) IsAdmin() bool {
	return s.State == StateAuthenticated && s.Identity != nil && s.Identity.IsAdministrator
}

// Authenticated reports whether an identity is present.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}

// Result is the outcome of Login and Register. The session never returns
// errors from those calls, callers decide how to present a failure.
type Result struct {
	Success  bool
	Message  string
	Identity *Identity
	Err      error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionClock injects a custom clock (useful for tests).
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSessionResolver routes identity resolution during Initialize through r.
func WithSessionResolver(r IdentityResolver) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSessionListener subscribes l before the session does anything.
func WithSessionListener(l SessionListener) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.subscribe(l)
		}
	}
}

// Session is the single source of truth for who is logged in. It starts in
// StateBootstrapping and Initialize moves it to Anonymous or Authenticated.
type Session struct {
	mu          sync.RWMutex
	auth        AuthGateway
	storage     Storage
	resolver    IdentityResolver
	logger      Logger
	now         func() time.Time
	transitions transitionTable

	state    State
	identity *Identity
	loading  bool
	lastErr  string

	initOnce  sync.Once
	listeners map[int]SessionListener
	nextID    int
}

// NewSession creates a session in StateBootstrapping. auth must issue its
// requests with the token held in storage.
func NewSession(auth AuthGateway, storage Storage, opts ...SessionOption) *Session {
	s := &Session{
		auth:        auth,
		storage:     storage,
		resolver:    directResolver{},
		logger:      defLogger{},
		now:         time.Now,
		transitions: defaultTransitions(),
		state:       StateBootstrapping,
		loading:     true,
		listeners:   map[int]SessionListener{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.storage == nil {
		s.storage = NewMemoryStorage(nil)
	}

	return s
}

// Initialize rehydrates the session from storage. It runs at most once,
// later calls return the current snapshot. A failed rehydration is not an
// error: credentials are cleared and the session becomes Anonymous.
func (s *Session) Initialize(ctx context.Context) Snapshot {
	s.initOnce.Do(func() {
		s.bootstrap(ctx)
	})
	return s.Snapshot()
}

func (s *Session) bootstrap(ctx context.Context) {
	token, ok := StoredToken(s.storage)
	if !ok {
		if err := s.storage.Delete(IdentityKey); err != nil {
			s.logger.Warn("session failed to drop identity snapshot", "error", err)
		}
		s.apply(ctx, StateAnonymous, nil, SessionEvent{Type: SessionEventInitialized})
		return
	}

	identity, err := s.resolver.Resolve(ctx, token, s.auth.CurrentUser)
	if err != nil {
		s.logger.Debug("session rehydration failed", "error", err)
		s.clearCredentials()
		s.apply(ctx, StateAnonymous, nil, SessionEvent{
			Type: SessionEventRehydrateFailure,
			Err:  err,
		})
		return
	}

	if err := storeIdentity(s.storage, identity); err != nil {
		s.logger.Warn("session failed to persist identity snapshot", "error", err)
	}
	s.apply(ctx, StateAuthenticated, identity, SessionEvent{Type: SessionEventInitialized})
}

// Login exchanges credentials for a token, then resolves and persists the
// identity. On failure the state is left as it was and LastError holds the
// server message, or a generic fallback.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	s.begin()

	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return s.fail(ctx, SessionEventLoginFailure, err, defaultLoginFailure)
	}

	if err := s.storage.Set(TokenKey, token.AccessToken); err != nil {
		return s.fail(ctx, SessionEventLoginFailure, err, defaultLoginFailure)
	}

	identity, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.clearCredentials()
		if s.State() == StateAuthenticated {
			s.apply(ctx, StateAnonymous, nil, SessionEvent{Type: SessionEventLogout})
		}
		return s.fail(ctx, SessionEventLoginFailure, err, defaultLoginFailure)
	}

	if err := storeIdentity(s.storage, identity); err != nil {
		s.logger.Warn("session failed to persist identity snapshot", "error", err)
	}

	if err := s.apply(ctx, StateAuthenticated, identity, SessionEvent{Type: SessionEventLoginSuccess}); err != nil {
		return s.fail(ctx, SessionEventLoginFailure, err, defaultLoginFailure)
	}

	return Result{Success: true, Identity: cloneIdentity(identity)}
}

// Register creates an account. It never authenticates the caller.
func (s *Session) Register(ctx context.Context, reg Registration) Result {
	s.begin()

	identity, err := s.auth.Register(ctx, reg)
	if err != nil {
		return s.fail(ctx, SessionEventRegisterFailure, err, defaultRegisterFailure)
	}

	s.mu.Lock()
	s.loading = false
	state := s.state
	s.mu.Unlock()

	s.notify(ctx, SessionEvent{
		Type:     SessionEventRegisterSuccess,
		From:     state,
		To:       state,
		Identity: cloneIdentity(identity),
	})

	return Result{Success: true, Identity: cloneIdentity(identity)}
}

// Logout clears the persisted credentials and the in-memory identity. It is
// purely local and always succeeds.
func (s *Session) Logout(ctx context.Context) {
	s.clearCredentials()
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	s.apply(ctx, StateAnonymous, nil, SessionEvent{Type: SessionEventLogout})
}

// Snapshot returns a consistent copy of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:     s.state,
		Identity:  cloneIdentity(s.identity),
		Loading:   s.loading,
		LastError: s.lastErr,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns a copy of the current identity, nil when anonymous.
func (s *Session) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIdentity(s.identity)
}

// IsAdmin is the administrator capability derived from the identity.
func (s *Session) IsAdmin() bool {
	return s.Snapshot().IsAdmin()
}

// Loading reports whether an operation is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the message of the last failed Login or Register.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Subscribe registers l for session events and returns a function that
// removes it.
func (s *Session) Subscribe(l SessionListener) func() {
	if l == nil {
		return func() {}
	}
	id := s.subscribe(l)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) subscribe(l SessionListener) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return id
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Session) fail(ctx context.Context, kind SessionEventType, err error, fallback string) Result {
	msg := Message(err, fallback)

	s.mu.Lock()
	s.loading = false
	s.lastErr = msg
	state := s.state
	s.mu.Unlock()

	s.notify(ctx, SessionEvent{
		Type:    kind,
		From:    state,
		To:      state,
		Message: msg,
		Err:     err,
	})

	return Result{Message: msg, Err: err}
}

// apply moves the session to target and notifies listeners with event.
func (s *Session) apply(ctx context.Context, target State, identity *Identity, event SessionEvent) error {
	s.mu.Lock()
	from := s.state
	if err := s.transitions.check(from, target); err != nil {
		s.mu.Unlock()
		s.logger.Error("session transition rejected", "from", from, "to", target, "error", err)
		return err
	}
	s.state = target
	s.identity = cloneIdentity(identity)
	s.loading = false
	s.mu.Unlock()

	event.From = from
	event.To = target
	event.Identity = cloneIdentity(identity)
	s.notify(ctx, event)
	return nil
}

func (s *Session) notify(ctx context.Context, event SessionEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	s.mu.RLock()
	listeners := make([]SessionListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l.OnSessionEvent(ctx, event)
	}
}

func (s *Session) clearCredentials() {
	if err := ClearCredentials(s.storage); err != nil {
		s.logger.Warn("session failed to clear credentials", "error", err)
	}
}

func cloneIdentity(identity *Identity) *Identity {
	if identity == nil {
		return nil
	}
	clone := *identity
	return &clone
}
