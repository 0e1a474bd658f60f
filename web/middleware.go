package web

import (
	"strings"
	"time"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-sweetshop"
	"github.com/google/uuid"
)

const (
	// SessionKey holds the request *sweetshop.Session in locals
	SessionKey = "sweetshop_session"
	// CatalogKey holds the request *sweetshop.CatalogService in locals
	CatalogKey = "sweetshop_catalog"
	// BrowserIDCookie identifies the browser for CSRF token binding
	BrowserIDCookie = "sweetshop_bid"
	// browserIDLocal is the locals key the CSRF middleware binds tokens to
	browserIDLocal = "session_id"
)

// SessionMiddleware builds one Session per request over cookie storage and
// initializes it before any handler runs, so every handler and template of
// the request observes the same identity. Requests matched by any skip
// func bypass it and never reach the API.
func SessionMiddleware(client *sweetshop.Client, cfg sweetshop.Config, logger Logger, skip ...func(router.Context) bool) router.MiddlewareFunc {
	if logger == nil {
		logger = sweetshop.DefaultLogger()
	}
	resolver := sweetshop.NewSharedResolver()
	listener := sweetshop.LogListener(logger)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			for _, s := range skip {
				if s != nil && s(ctx) {
					return ctx.Next()
				}
			}

			storage := NewCookieStorage(ctx, cfg)
			bound := client.Bind(storage)

			session := sweetshop.NewSession(
				sweetshop.NewAuthService(bound),
				storage,
				sweetshop.WithSessionResolver(resolver),
				sweetshop.WithSessionLogger(logger),
				sweetshop.WithSessionListener(listener),
			)
			session.Initialize(ctx.Context())

			ctx.Locals(SessionKey, session)
			ctx.Locals(CatalogKey, sweetshop.NewCatalogService(bound))
			ctx.SetContext(sweetshop.WithSessionContext(ctx.Context(), session))

			return ctx.Next()
		}
	}
}

// SkipPrefix matches requests under prefix, e.g. static assets.
func SkipPrefix(prefix string) func(router.Context) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return func(ctx router.Context) bool {
		p := ctx.Path()
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
}

// BrowserID ensures the browser carries a random id cookie and exposes it
// to the CSRF middleware.
func BrowserID(cfg sweetshop.Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			id := ctx.Cookies(BrowserIDCookie)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				ctx.Cookie(&router.Cookie{
					Name:     BrowserIDCookie,
					Value:    id,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					HTTPOnly: true,
					Secure:   cfg.GetSecureCookies(),
					SameSite: "Lax",
				})
			}
			ctx.Locals(browserIDLocal, id)
			return ctx.Next()
		}
	}
}

// SessionFrom returns the request session.
func SessionFrom(ctx router.Context) (*sweetshop.Session, bool) {
	s, ok := ctx.Locals(SessionKey).(*sweetshop.Session)
	return s, ok && s != nil
}

// CatalogFrom returns the catalog service bound to the request credentials.
func CatalogFrom(ctx router.Context) (*sweetshop.CatalogService, bool) {
	c, ok := ctx.Locals(CatalogKey).(*sweetshop.CatalogService)
	return c, ok && c != nil
}
