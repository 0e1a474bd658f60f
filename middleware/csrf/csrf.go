package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	textCodeTokenMissing  = "CSRF_TOKEN_MISSING"
	textCodeTokenMismatch = "CSRF_TOKEN_MISMATCH"
	textCodeTokenExpired  = "CSRF_TOKEN_EXPIRED"
)

// ErrTokenMissing is returned when an unsafe request carries no token.
var ErrTokenMissing = errors.New("CSRF token missing", errors.CategoryBadInput).
	WithTextCode(textCodeTokenMissing).
	WithCode(errors.CodeBadRequest)

// ErrTokenMismatch is returned for forged, tampered or foreign tokens.
var ErrTokenMismatch = errors.New("CSRF token mismatch", errors.CategoryAuthz).
	WithTextCode(textCodeTokenMismatch).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned for tokens older than Config.Expiration.
var ErrTokenExpired = errors.New("CSRF token expired", errors.CategoryAuthz).
	WithTextCode(textCodeTokenExpired).
	WithCode(errors.CodeForbidden)

// DefaultNonceLength is the number of random bytes in a token
const DefaultNonceLength = 16

// DefaultContextKey is the locals key holding the request token
const DefaultContextKey = "csrf_token"

// DefaultFormFieldName is the form field carrying the token
const DefaultFormFieldName = "_token"

// DefaultHeaderName is the header carrying the token
const DefaultHeaderName = "X-CSRF-Token"

// DefaultBindingKey is the locals key of the value tokens are bound to
const DefaultBindingKey = "session_id"

// Config defines the configuration for CSRF middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	NonceLength   int
	ContextKey    string
	FormFieldName string
	HeaderName    string

	// BindingKey is the locals key whose value a token is bound to. Requests
	// without it fall back to the client IP.
	BindingKey string

	ErrorHandler   router.ErrorHandler
	SuccessHandler router.HandlerFunc
	SafeMethods    []string

	// Expiration is how long an issued token is accepted
	Expiration time.Duration

	// SecureKey signs tokens, at least 32 bytes. A random key is generated
	// when empty, which invalidates tokens on restart.
	SecureKey []byte

	// Now overrides the clock (useful for tests)
	Now func() time.Time
}

// New creates a new CSRF middleware. Tokens are stateless: an HMAC over a
// timestamp, a nonce and the binding value.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			binding := bindingValue(ctx, cfg)
			token, err := issue(cfg, binding)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, token)
			ctx.Locals(cfg.ContextKey+"_field", cfg.FormFieldName)
			ctx.Locals(cfg.ContextKey+"_header", cfg.HeaderName)

			if slices.Contains(cfg.SafeMethods, strings.ToUpper(ctx.Method())) {
				return cfg.SuccessHandler(ctx)
			}

			received := ctx.FormValue(cfg.FormFieldName)
			if received == "" {
				received = ctx.GetString(cfg.HeaderName, "")
			}

			if err := verify(cfg, binding, received); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func bindingValue(ctx router.Context, cfg Config) string {
	if id, ok := ctx.Locals(cfg.BindingKey).(string); ok && id != "" {
		return "bid:" + id
	}
	return "ip:" + ctx.IP()
}

func issue(cfg Config, binding string) (string, error) {
	nonce := make([]byte, cfg.NonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	payload := strconv.FormatInt(cfg.Now().UTC().Unix(), 10) + "." + hex.EncodeToString(nonce)
	sig := sign(cfg.SecureKey, payload, binding)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + "." + hex.EncodeToString(sig))), nil
}

func verify(cfg Config, binding, token string) error {
	if token == "" {
		return ErrTokenMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ".")
	if len(parts) != 3 {
		return ErrTokenMismatch
	}

	issuedAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	got, err := hex.DecodeString(parts[2])
	if err != nil {
		return ErrTokenMismatch
	}

	if !hmac.Equal(got, sign(cfg.SecureKey, parts[0]+"."+parts[1], binding)) {
		return ErrTokenMismatch
	}

	if cfg.Now().UTC().After(time.Unix(issuedAt, 0).Add(cfg.Expiration)) {
		return ErrTokenExpired
	}

	return nil
}

func sign(key []byte, payload, binding string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	mac.Write([]byte{0})
	mac.Write([]byte(binding))
	return mac.Sum(nil)
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.NonceLength == 0 {
		cfg.NonceLength = DefaultNonceLength
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.BindingKey == "" {
		cfg.BindingKey = DefaultBindingKey
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}

	if cfg.Expiration == 0 {
		cfg.Expiration = 12 * time.Hour
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	cfg.SecureKey = initializeSecureKey(cfg.SecureKey)
	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return ctx.Status(router.StatusInternalServerError).SendString("CSRF validation error")
	}
	return ctx.Status(richErr.Code).SendString(richErr.Message)
}

func initializeSecureKey(current []byte) []byte {
	if len(current) > 0 {
		if len(current) < 32 {
			panic(fmt.Errorf("csrf: secure key must be at least 32 bytes, got %d", len(current)))
		}
		return current
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		panic(fmt.Errorf("csrf: unable to initialize secure key: %w", err))
	}
	return key
}

// CSRFTemplateHelpers returns empty placeholders for views rendered outside
// of the middleware.
func CSRFTemplateHelpers() map[string]any {
	return map[string]any{
		"csrf_token":       "",
		"csrf_field":       `<input type="hidden" name="` + DefaultFormFieldName + `" value="">`,
		"csrf_header_name": DefaultHeaderName,
	}
}

// CSRFTemplateHelpersWithRouter returns the helpers for the token the
// middleware stored on ctx.
func CSRFTemplateHelpersWithRouter(ctx router.Context, tokenKey string) map[string]any {
	if tokenKey == "" {
		tokenKey = DefaultContextKey
	}

	token, _ := ctx.Locals(tokenKey).(string)

	fieldName := DefaultFormFieldName
	if val, ok := ctx.Locals(tokenKey + "_field").(string); ok && val != "" {
		fieldName = val
	}

	headerName := DefaultHeaderName
	if val, ok := ctx.Locals(tokenKey + "_header").(string); ok && val != "" {
		headerName = val
	}

	return map[string]any{
		"csrf_token":       token,
		"csrf_field":       `<input type="hidden" name="` + fieldName + `" value="` + token + `">`,
		"csrf_header_name": headerName,
	}
}
