package sweetshop

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnreachable     = "SWEETSHOP_UNREACHABLE"
	TextCodeUnauthenticated = "SWEETSHOP_UNAUTHENTICATED"
	TextCodeForbidden       = "SWEETSHOP_FORBIDDEN"
	TextCodeInvalid         = "SWEETSHOP_INVALID"
	TextCodeNotFound        = "SWEETSHOP_NOT_FOUND"
	TextCodeUnexpected      = "SWEETSHOP_UNEXPECTED"
)

// ErrUnreachable is returned when the remote API could not be reached.
var ErrUnreachable = errors.New("sweet shop API unreachable", errors.CategoryOperation).
	WithTextCode(TextCodeUnreachable).
	WithCode(http.StatusServiceUnavailable)

// ErrUnauthenticated covers bad credentials and expired or invalid tokens.
var ErrUnauthenticated = errors.New("authentication failed", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when a non administrator attempts a privileged call.
var ErrForbidden = errors.New("operation not permitted", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrInvalid covers rejected payloads, e.g. purchasing more than the stock.
var ErrInvalid = errors.New("request rejected", errors.CategoryValidation).
	WithTextCode(TextCodeInvalid).
	WithCode(errors.CodeBadRequest)

// ErrNotFound is returned for stale item ids.
var ErrNotFound = errors.New("resource not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrUnexpected is returned for any other failed response.
var ErrUnexpected = errors.New("unexpected API response", errors.CategoryInternal).
	WithTextCode(TextCodeUnexpected).
	WithCode(errors.CodeInternal)

const detailKey = "detail"

// classifyStatus maps a failed response to the error taxonomy. The server
// message, if any, is kept verbatim so it can be surfaced unchanged.
func classifyStatus(status int, detail string, source error, extra map[string]any) *errors.Error {
	var base *errors.Error
	switch {
	case status == http.StatusUnauthorized:
		base = ErrUnauthenticated
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		base = ErrInvalid
	default:
		base = ErrUnexpected
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}

	meta := map[string]any{"status": status}
	for k, v := range extra {
		meta[k] = v
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		meta[detailKey] = detail
		clone.Message = detail
	}
	if source != nil {
		clone.Source = source
	}
	return clone.WithMetadata(meta)
}

func unreachable(source error, operation string) *errors.Error {
	clone := ErrUnreachable.Clone()
	if clone == nil {
		clone = ErrUnreachable
	}
	clone.Source = source
	return clone.WithMetadata(map[string]any{
		"operation": operation,
		"error":     source.Error(),
	})
}

// Message returns the human readable message reported by the server for err,
// or fallback when the server did not report one.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Metadata != nil {
		if detail, ok := richErr.Metadata[detailKey].(string); ok && detail != "" {
			return detail
		}
	}
	return fallback
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsUnauthenticated reports bad credentials or an expired/invalid token.
func IsUnauthenticated(err error) bool { return hasTextCode(err, TextCodeUnauthenticated) }

// IsForbidden reports an authorization failure.
func IsForbidden(err error) bool { return hasTextCode(err, TextCodeForbidden) }

// IsInvalid reports a validation failure.
func IsInvalid(err error) bool { return hasTextCode(err, TextCodeInvalid) }

// IsNotFound reports a stale id.
func IsNotFound(err error) bool { return hasTextCode(err, TextCodeNotFound) }

// IsUnreachable reports a transport failure.
func IsUnreachable(err error) bool { return hasTextCode(err, TextCodeUnreachable) }
