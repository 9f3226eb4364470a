package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// RESTStore talks to the HR backend over its JSON API.
type RESTStore struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
	inst       *instruments
}

var _ Backend = (*RESTStore)(nil)

// Option configures a RESTStore.
type Option func(*RESTStore)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *RESTStore) { s.httpClient = c }
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *RESTStore) { s.httpClient.Timeout = d }
}

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(path string) Option {
	return func(s *RESTStore) { s.loginPath = path }
}

// WithMeter records request metrics on the given meter.
func WithMeter(m metric.Meter) Option {
	return func(s *RESTStore) { s.inst.setMeter(m) }
}

// WithTracer wraps each request in a span from the given tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *RESTStore) { s.inst.tracer = t }
}

// NewRESTStore creates a store for the API rooted at baseURL, e.g.
// http://localhost:5103/api.
func NewRESTStore(baseURL string, opts ...Option) *RESTStore {
	s := &RESTStore{
		baseURL:   baseURL,
		loginPath: "/Auth/login",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		inst: newInstruments(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// doRequest sends body as JSON and decodes the response into result when both
// are non-nil. An empty response body leaves result untouched.
func (s *RESTStore) doRequest(ctx context.Context, op, method, path string, body, result any, token string) (err error) {
	ctx, done := s.inst.start(ctx, op, method)
	defer func() { done(err) }()

	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newRequestError(method, path, resp.StatusCode, respBytes)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
		}
	}
	return nil
}
