package filestore_test

import (
	"context"

	"github.com/goliatone/go-sweetshop"
)

type fixedAuth struct{}

func (fixedAuth) Login(context.Context, string, string) (*sweetshop.AccessToken, error) {
	return &sweetshop.AccessToken{AccessToken: "tok-7"}, nil
}

func (fixedAuth) CurrentUser(context.Context) (*sweetshop.Identity, error) {
	return &sweetshop.Identity{ID: 7, Email: "alice@example.com"}, nil
}

func (fixedAuth) Register(_ context.Context, reg sweetshop.Registration) (*sweetshop.Identity, error) {
	return &sweetshop.Identity{ID: 8, Email: reg.Email}, nil
}
