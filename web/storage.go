package web

import (
	"encoding/base64"
	"time"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-sweetshop"
)

// CookieJar is the part of router.Context the cookie storage needs.
type CookieJar interface {
	Cookies(key string, defaultValue ...string) string
	Cookie(cookie *router.Cookie)
}

var _ sweetshop.Storage = &CookieStorage{}

// CookieStorage keeps the session credentials in browser cookies. Writes are
// visible to later reads in the same request.
type CookieStorage struct {
	jar     CookieJar
	cfg     sweetshop.Config
	now     func() time.Time
	pending map[string]string
}

// NewCookieStorage returns a Storage over the cookies of one request.
func NewCookieStorage(jar CookieJar, cfg sweetshop.Config) *CookieStorage {
	return &CookieStorage{
		jar:     jar,
		cfg:     cfg,
		now:     time.Now,
		pending: map[string]string{},
	}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		return v, v != ""
	}

	raw := s.jar.Cookies(s.cookieName(key))
	if raw == "" {
		return "", false
	}

	if key == sweetshop.IdentityKey {
		decoded, err := base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return "", false
		}
		raw = string(decoded)
	}
	return raw, true
}

func (s *CookieStorage) Set(key, value string) error {
	s.pending[key] = value

	lifetime := s.cfg.GetCookieDuration()
	stored := value

	switch key {
	case sweetshop.TokenKey:
		lifetime = sweetshop.TokenLifetime(value, s.now(), lifetime)
	case sweetshop.IdentityKey:
		if token, ok := s.Get(sweetshop.TokenKey); ok {
			lifetime = sweetshop.TokenLifetime(token, s.now(), lifetime)
		}
		stored = base64.RawURLEncoding.EncodeToString([]byte(value))
	}

	if lifetime <= 0 {
		return s.Delete(key)
	}

	s.jar.Cookie(&router.Cookie{
		Name:     s.cookieName(key),
		Value:    stored,
		Expires:  s.now().Add(lifetime),
		Path:     "/",
		HTTPOnly: key == sweetshop.TokenKey,
		Secure:   s.cfg.GetSecureCookies(),
		SameSite: "Lax",
	})
	return nil
}

func (s *CookieStorage) Delete(key string) error {
	s.pending[key] = ""
	s.jar.Cookie(expiredCookie(s.cookieName(key), s.cfg.GetSecureCookies()))
	return nil
}

func (s *CookieStorage) cookieName(key string) string {
	switch key {
	case sweetshop.TokenKey:
		return s.cfg.GetTokenCookie()
	case sweetshop.IdentityKey:
		return s.cfg.GetIdentityCookie()
	default:
		return key
	}
}

func expiredCookie(name string, secure bool) *router.Cookie {
	return &router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	}
}
