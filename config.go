package sweetshop

import "time"

// Config holds the client options
type Config interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetUserAgent() string
	GetTokenCookie() string
	GetIdentityCookie() string
	GetCookieDuration() time.Duration
	GetSecureCookies() bool
	GetRejectedRouteKey() string
	GetLandingRoute() string
	GetLoginRoute() string
}

var _ Config = Settings{}

// Settings is the default Config implementation. Zero values fall back to
// the defaults in DefaultSettings.
type Settings struct {
	APIBaseURL     string `json:"api_base_url" koanf:"api_base_url"`
	RequestTimeout string `json:"request_timeout" koanf:"request_timeout"`
	UserAgent      string `json:"user_agent" koanf:"user_agent"`
	TokenCookie    string `json:"token_cookie" koanf:"token_cookie"`
	IdentityCookie string `json:"identity_cookie" koanf:"identity_cookie"`
	CookieDuration string `json:"cookie_duration" koanf:"cookie_duration"`
	// SecureCookies marks the session cookies Secure. Enable it when the
	// front end is served over TLS, browsers drop Secure cookies on plain
	// http origins.
	SecureCookies bool   `json:"secure_cookies" koanf:"secure_cookies"`
	RejectedRoute string `json:"rejected_route_key" koanf:"rejected_route_key"`
	LandingRoute  string `json:"landing_route" koanf:"landing_route"`
	LoginRoute    string `json:"login_route" koanf:"login_route"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		APIBaseURL:     "http://localhost:8000",
		RequestTimeout: "10s",
		UserAgent:      "go-sweetshop",
		TokenCookie:    TokenKey,
		IdentityCookie: IdentityKey,
		CookieDuration: "24h",
		SecureCookies:  false,
		RejectedRoute:  "rejected_route",
		LandingRoute:   "/dashboard",
		LoginRoute:     "/login",
	}
}

func (s Settings) GetAPIBaseURL() string {
	return or(s.APIBaseURL, DefaultSettings().APIBaseURL)
}

func (s Settings) GetRequestTimeout() time.Duration {
	return duration(s.RequestTimeout, 10*time.Second)
}

func (s Settings) GetUserAgent() string {
	return or(s.UserAgent, DefaultSettings().UserAgent)
}

func (s Settings) GetTokenCookie() string {
	return or(s.TokenCookie, TokenKey)
}

func (s Settings) GetIdentityCookie() string {
	return or(s.IdentityCookie, IdentityKey)
}

func (s Settings) GetCookieDuration() time.Duration {
	return duration(s.CookieDuration, 24*time.Hour)
}

func (s Settings) GetSecureCookies() bool {
	return s.SecureCookies
}

func (s Settings) GetRejectedRouteKey() string {
	return or(s.RejectedRoute, DefaultSettings().RejectedRoute)
}

func (s Settings) GetLandingRoute() string {
	return or(s.LandingRoute, DefaultSettings().LandingRoute)
}

func (s Settings) GetLoginRoute() string {
	return or(s.LoginRoute, DefaultSettings().LoginRoute)
}

func or(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

func duration(expr string, def time.Duration) time.Duration {
	if expr == "" {
		return def
	}
	d, err := time.ParseDuration(expr)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
