package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-sweetshop"
)

const rejectedRouteTTL = 5 * time.Minute

// RememberRejected stores the path of a request that was sent to the login
// page so the login handler can return the user there.
func RememberRejected(ctx router.Context, cfg sweetshop.Config) {
	ctx.Cookie(&router.Cookie{
		Name:     cfg.GetRejectedRouteKey(),
		Value:    ctx.OriginalURL(),
		Path:     "/",
		Expires:  time.Now().Add(rejectedRouteTTL),
		HTTPOnly: true,
		Secure:   cfg.GetSecureCookies(),
		SameSite: "Lax",
	})
}

// TakeRejected returns the remembered path, or def, and clears it.
func TakeRejected(jar CookieJar, cfg sweetshop.Config, def string) string {
	key := cfg.GetRejectedRouteKey()
	target := SafeRedirect(jar.Cookies(key), def)
	jar.Cookie(expiredCookie(key, cfg.GetSecureCookies()))
	return target
}

// SafeRedirect returns target when it is a local absolute path, def
// otherwise. Anonymous-only pages are never a valid return path.
func SafeRedirect(target, def string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return def
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return def
	}
	switch strings.TrimRight(u.Path, "/") {
	case "", "/login", "/register", "/logout":
		return def
	}
	return target
}

// redirectStatus is 302 for GET and 303 after a form post.
func redirectStatus(method string) int {
	if strings.EqualFold(method, string(router.GET)) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
