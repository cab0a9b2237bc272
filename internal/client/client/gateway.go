package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/nfcgate-console/internal/common"
	"github.com/dmitrijs2005/nfcgate-console/internal/logging"
	"github.com/google/uuid"
)

// snippetLimit bounds the raw-body excerpt kept for non-JSON error responses.
const snippetLimit = 180

// errorBodyLimit caps how much of an error response is read.
const errorBodyLimit = 64 << 10

// Session is the token holder the gateway reads from and reports rejections
// to. Invalidate is called once for every 401 response.
type Session interface {
	Token() string
	Invalidate(ctx context.Context)
}

// HTTPClient talks to the backend admin API. Every call is a single attempt;
// retry is left to the operator.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	session Session
	log     logging.Logger
	newID   func() string
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets a per-request timeout. Zero keeps the transport's own.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request lines.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for the backend at baseURL, e.g.
// "http://127.0.0.1:8081". Paths such as /api/health are appended to it.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https, got %q", baseURL)
	}
	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		log:     logging.Discard(),
		newID:   func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetSession wires the token holder. It is set after construction because the
// session controller itself needs the client.
func (c *HTTPClient) SetSession(s Session) {
	c.session = s
}

func (c *HTTPClient) token() string {
	if c.session == nil {
		return ""
	}
	return c.session.Token()
}

// newRequest builds a request for path with an optional ordered query and an
// optional JSON body.
func (c *HTTPClient) newRequest(ctx context.Context, method, path string, q *query, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if q != nil {
		u.RawQuery = q.encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do sends req and classifies the response:
//   - transport failure: *NetworkError (matches ErrUnavailable),
//   - 401: ErrUnauthorized, after Session.Invalidate,
//   - other non-2xx: *AppError,
//   - 2xx: the response, whose body the caller must close.
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if tok := c.token(); tok != "" {
		req.Header.Set(common.TokenHeaderName, tok)
	}
	reqID := c.newID()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	log := c.log.With("request_id", reqID, "method", req.Method, "path", req.URL.Path)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return nil, &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
	}
	log.Info(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	if resp.StatusCode == http.StatusUnauthorized {
		code := decodeErrorCode(raw)
		if c.session != nil {
			c.session.Invalidate(context.WithoutCancel(ctx))
		}
		log.Warn(ctx, "session rejected", "code", code)
		if code == "" {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, code)
	}

	appErr := &AppError{Status: resp.StatusCode, Code: decodeErrorCode(raw)}
	if appErr.Code == "" {
		appErr.Snippet = common.Truncate(common.CollapseSpace(string(raw)), snippetLimit)
		if appErr.Snippet == "" {
			appErr.Snippet = http.StatusText(resp.StatusCode)
		}
	}
	log.Warn(ctx, "request rejected", "status", resp.StatusCode, "code", appErr.Code)
	return nil, appErr
}

// doJSON sends a request and decodes a 2xx JSON body into out (when non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, q *query, in, out any) error {
	req, err := c.newRequest(ctx, method, path, q, in)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s: empty body", path)
		}
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// decodeErrorCode extracts "error" from a {"error": "..."} body, or "" when
// the body is not such an object.
func decodeErrorCode(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Error)
}

// query is an ordered list of query parameters. Values are percent-encoded;
// order is kept as added so requests are stable and readable in logs.
type query struct {
	keys   []string
	values []string
}

func (q *query) add(key, value string) *query {
	q.keys = append(q.keys, key)
	q.values = append(q.values, value)
	return q
}

// addOptional adds key only when value is non-empty.
func (q *query) addOptional(key, value string) *query {
	if value == "" {
		return q
	}
	return q.add(key, value)
}

func (q *query) encode() string {
	var sb strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(q.values[i]))
	}
	return sb.String()
}
