package sweetshop

import (
	"context"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per call id so client and server logs line up
const RequestIDHeader = "X-Request-ID"

// Client issues requests to the remote API. A Client bound to a Storage
// reads the bearer token from it before every call.
type Client struct {
	http       *resty.Client
	httpClient *http.Client
	storage    Storage
	logger     Logger
	debug      bool
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClientDebug dumps request and response payloads to the logger.
func WithClientDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithClientStorage binds the token storage at construction time.
func WithClientStorage(s Storage) ClientOption {
	return func(c *Client) {
		c.storage = s
	}
}

// NewClient creates a Client for the API rooted at cfg.GetAPIBaseURL.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	rc := resty.New()
	if c.httpClient != nil {
		rc = resty.NewWithClient(c.httpClient)
	}

	rc.SetBaseURL(strings.TrimRight(cfg.GetAPIBaseURL(), "/")).
		SetTimeout(cfg.GetRequestTimeout()).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.GetUserAgent()).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	c.http = rc
	return c
}

// Bind returns a copy of the client that reads credentials from s.
func (c *Client) Bind(s Storage) *Client {
	clone := *c
	clone.storage = s
	return &clone
}

// Storage returns the bound storage, if any.
func (c *Client) Storage() Storage {
	return c.storage
}

type call struct {
	op     string
	method string
	path   string
	body   any
	form   map[string]string
	query  map[string]string
	result any
}

func (c *Client) do(ctx context.Context, in call) error {
	requestID := uuid.NewString()

	req := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		SetError(&apiError{})

	if token, ok := StoredToken(c.storage); ok {
		req.SetAuthToken(token)
	}

	switch {
	case in.form != nil:
		req.SetFormData(in.form)
	case in.body != nil:
		req.SetHeader("Content-Type", "application/json").SetBody(in.body)
	}

	if len(in.query) > 0 {
		req.SetQueryParams(in.query)
	}

	if in.result != nil {
		req.SetResult(in.result)
	}

	if c.debug && in.body != nil {
		c.logger.Debug("api request payload", "op", in.op, "body", print.MaybePrettyJSON(in.body))
	}

	resp, err := req.Execute(in.method, in.path)
	if err != nil {
		c.logger.Error("api request failed", "op", in.op, "request_id", requestID, "error", err)
		return unreachable(err, in.op)
	}

	c.logger.Debug("api response",
		"op", in.op,
		"method", in.method,
		"path", in.path,
		"status", resp.StatusCode(),
		"request_id", requestID,
	)

	if resp.IsError() {
		detail := ""
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil {
			detail = apiErr.message()
		}
		return classifyStatus(resp.StatusCode(), detail, nil, map[string]any{
			"op":         in.op,
			"request_id": requestID,
		})
	}

	if c.debug && in.result != nil {
		c.logger.Debug("api response payload", "op", in.op, "body", print.MaybePrettyJSON(in.result))
	}

	return nil
}

// apiError is the error envelope of the remote API. Detail is either a
// message or a list of field errors.
type apiError struct {
	Detail any `json:"detail"`
}

func (e *apiError) message() string {
	switch detail := e.Detail.(type) {
	case string:
		return detail
	case map[string]any:
		if msg, ok := detail["msg"].(string); ok {
			return msg
		}
	case []any:
		msgs := make([]string, 0, len(detail))
		for _, entry := range detail {
			switch v := entry.(type) {
			case string:
				msgs = append(msgs, v)
			case map[string]any:
				if msg, ok := v["msg"].(string); ok && msg != "" {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
