package sweetshop

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// IdentityResolver turns a bearer token into an Identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string, fetch func(context.Context) (*Identity, error)) (*Identity, error)
}

// SharedResolver collapses concurrent resolutions of the same token into a
// single call. Only identity lookups go through it, mutations never do.
// The shared fetch is detached from any single caller's cancellation, each
// caller stops waiting when its own ctx is done.
type SharedResolver struct {
	group singleflight.Group
}

// NewSharedResolver returns an empty SharedResolver.
func NewSharedResolver() *SharedResolver {
	return &SharedResolver{}
}

func (r *SharedResolver) Resolve(ctx context.Context, token string, fetch func(context.Context) (*Identity, error)) (*Identity, error) {
	ch := r.group.DoChan(token, func() (any, error) {
		return fetch(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		return nil, res.Err
	}
	identity, _ := res.Val.(*Identity)
	if identity == nil {
		return nil, ErrUnauthenticated.Clone()
	}
	clone := *identity
	return &clone, nil
}

type directResolver struct{}

func (directResolver) Resolve(ctx context.Context, _ string, fetch func(context.Context) (*Identity, error)) (*Identity, error) {
	return fetch(ctx)
}
