// Package backendsvc talks to the course backend REST API on behalf of the storefront users.
package backendsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/listing"
	metricsvc "github.com/trezcool/masomo-storefront/services/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	headerCookie    = "Cookie"
)

// Error is a non 2xx answer of the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend: %d %s", e.StatusCode, e.Message)
}

// UnreachableError is a failure to get any answer from the backend.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("backend unreachable (%s): %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// StatusCode returns the status of a backend *Error wrapped in err, or 0.
func StatusCode(err error) int {
	var berr *Error
	if errors.As(err, &berr) {
		return berr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL    string
	rest       *rest.Client
	maxRetries int
	cache      *cache
	logger     core.Logger
}

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL:    conf.Backend.BaseURL,
		rest:       &rest.Client{HTTPClient: &http.Client{Timeout: conf.Backend.Timeout}},
		maxRetries: conf.Backend.MaxRetries,
		cache:      newCache(conf.Backend.CacheTTL),
		logger:     logger,
	}
}

// call describes a backend request.
type call struct {
	method   rest.Method
	path     string // eg. /courses/:id, with params already filled
	endpoint string // route pattern, used as metric label
	session  string
	query    map[string]string
	body     interface{}
}

// do sends c, retrying idempotent requests on transport errors & 5xx answers.
// Non 2xx answers are returned as *Error.
func (cl *Client) do(ctx context.Context, c call) (*rest.Response, error) {
	req := rest.Request{
		Method:      c.method,
		BaseURL:     cl.baseURL + c.path,
		Headers:     map[string]string{"Accept": "application/json", headerRequestID: uuid.New().String()},
		QueryParams: c.query,
	}
	if c.session != "" {
		req.Headers[headerCookie] = c.session
	}
	if c.body != nil {
		body, err := json.Marshal(c.body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	var (
		resp     *rest.Response
		attempts int
		start    = time.Now()
	)
	op := func() error {
		attempts++
		var err error
		resp, err = cl.rest.SendWithContext(ctx, req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return newError(resp)
		}
		return nil
	}

	var err error
	if c.method == rest.Get && cl.maxRetries > 0 {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 100 * time.Millisecond
		err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cl.maxRetries)), ctx))
	} else {
		err = op()
	}

	metricsvc.BackendCallDuration.WithLabelValues(string(c.method), c.endpoint).Observe(time.Since(start).Seconds())
	if attempts > 1 {
		metricsvc.BackendRetriesTotal.WithLabelValues(c.endpoint).Add(float64(attempts - 1))
	}
	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metricsvc.BackendCallsTotal.WithLabelValues(string(c.method), c.endpoint, status).Inc()

	if err != nil {
		var berr *Error
		if errors.As(err, &berr) {
			return nil, berr
		}
		return nil, &UnreachableError{Endpoint: string(c.method) + " " + c.endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp)
	}
	return resp, nil
}

// get sends a GET call, answering from the cache when possible.
func (cl *Client) get(ctx context.Context, t tag, c call) (*rest.Response, error) {
	c.method = rest.Get
	key := cacheKey(c.session, c.path, c.query)
	if resp, ok := cl.cache.get(t, key); ok {
		return resp, nil
	}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return nil, err
	}
	cl.cache.set(t, c.session, key, resp)
	return resp, nil
}

// envelope is the backend's usual answer.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newError(resp *rest.Response) *Error {
	var env envelope
	_ = json.Unmarshal([]byte(resp.Body), &env)
	return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(env.Message)}
}

// decodeData decodes the `data` member of the answer into v, or the whole answer when it has none.
func decodeData(resp *rest.Response, v interface{}) error {
	var env envelope
	if err := json.Unmarshal([]byte(resp.Body), &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return errors.Wrap(json.Unmarshal(env.Data, v), "decoding backend data")
	}
	return errors.Wrap(json.Unmarshal([]byte(resp.Body), v), "decoding backend answer")
}

// normalize runs a list answer through listing.Normalize.
// Malformed answers are logged & counted, then returned as a usable empty list along with the *listing.MalformedError.
func normalize[T any](cl *Client, endpoint string, resp *rest.Response, opts listing.Options) (listing.Response[T], error) {
	out, shape, err := listing.Match[T]([]byte(resp.Body), opts)
	if err != nil {
		kind := "unknown"
		var merr *listing.MalformedError
		if errors.As(err, &merr) {
			kind = merr.Kind
		}
		metricsvc.MalformedResponsesTotal.WithLabelValues(endpoint, kind).Inc()
		cl.logger.Warn("malformed list response", err, map[string]interface{}{"endpoint": endpoint, "body": snippet(resp.Body)})
		return out, err
	}
	metricsvc.ResponseShapesTotal.WithLabelValues(endpoint, shape.String()).Inc()
	return out, nil
}

func snippet(body string) string {
	const max = 256
	if len(body) > max {
		return body[:max] + "..."
	}
	return body
}

// sessionFrom extracts the session cookies set by the backend, as a Cookie header value.
func sessionFrom(resp *rest.Response) string {
	header := http.Header(resp.Headers)
	cookies := (&http.Response{Header: header}).Cookies()
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Value == "" || ck.MaxAge < 0 {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}
