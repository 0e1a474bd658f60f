package sweetshop

import "context"

var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithSessionContext stores the session in ctx.
func WithSessionContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, s)
}

// SessionFromContext returns the session stored in ctx.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(*Session)
	return s, ok && s != nil
}

// IdentityFromContext returns the identity of the session stored in ctx.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil, false
	}
	identity := s.Identity()
	return identity, identity != nil
}
