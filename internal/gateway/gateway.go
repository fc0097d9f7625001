// Package gateway is the single outbound path to the LearnSnap API. It
// attaches the bearer token, classifies failures, and reacts to 401 by
// dropping the session and sending the user to the login view.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"learnsnap/internal/logger"
	"learnsnap/internal/navigation"
	"learnsnap/pkg/storage"
)

const (
	DefaultTimeout  = 10 * time.Second
	RequestIDHeader = "X-Request-ID"
)

// Credentials is the gateway's view of the session: where the bearer token
// comes from and how to drop it after a 401.
type Credentials interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context)
}

// StorageCredentials reads and clears the persisted token directly, for
// callers that run without a session store.
type StorageCredentials struct {
	Storage storage.Storage
}

func (s StorageCredentials) Token(ctx context.Context) string {
	tok, _, _ := s.Storage.Get(ctx, storage.KeyAccessToken)
	return tok
}

func (s StorageCredentials) Clear(ctx context.Context) {
	_ = s.Storage.Delete(ctx, storage.KeyAccessToken, storage.KeyUser)
}

type Gateway struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	storage    storage.Storage
	nav        navigation.Navigator
	log        *logger.Logger
	tracer     trace.Tracer
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithTimeout sets the per-request timeout shared by every call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.httpClient.Timeout = d }
}

func WithNavigator(nav navigation.Navigator) Option {
	return func(g *Gateway) { g.nav = nav }
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func New(baseURL string, creds Credentials, st storage.Storage, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		creds:      creds,
		storage:    st,
		log:        logger.Nop(),
		tracer:     otel.Tracer("learnsnap/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) BaseURL() string { return g.baseURL }

type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response (status %d): %w", r.Status, err)
	}
	return nil
}

// Do sends one request. Any status >= 400 comes back as *Error; a missing
// response is a KindNetwork *Error. A 401 clears the session and, unless the
// user is already on the login or signup view, remembers the current path
// and navigates to login. The request is never retried.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := g.tracer.Start(ctx, req.Method+" "+req.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target := g.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if tok := g.creds.Token(ctx); tok != "" {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
		attribute.String("learnsnap.request_id", requestID),
	)
	g.log.Debug("api request", "method", req.Method, "path", req.Path, "request_id", requestID)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			g.log.Warn("api request timeout", "method", req.Method, "path", req.Path, "request_id", requestID)
		} else {
			g.log.Warn("api network error", "method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "network")
		return nil, networkError(req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, networkError(req.Method, req.Path, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode < 400 {
		g.log.Debug("api response", "status", resp.StatusCode, "path", req.Path, "request_id", requestID)
		return out, nil
	}

	apiErr := classify(req.Method, req.Path, resp.StatusCode, body)
	span.SetStatus(codes.Error, apiErr.Kind.String())
	g.log.Warn("api error",
		"kind", apiErr.Kind.String(),
		"status", resp.StatusCode,
		"method", req.Method,
		"path", req.Path,
		"request_id", requestID,
		"message", apiErr.Message,
	)

	if apiErr.Kind == KindUnauthorized {
		g.handleUnauthorized(context.WithoutCancel(ctx))
	}
	return out, apiErr
}

func (g *Gateway) handleUnauthorized(ctx context.Context) {
	g.creds.Clear(ctx)
	if g.nav == nil {
		return
	}
	current := g.nav.CurrentPath()
	if navigation.IsAuthPage(current) {
		return
	}
	if err := navigation.Remember(ctx, g.storage, current); err != nil {
		g.log.Error("failed to remember redirect", "path", current, "error", err)
	}
	g.log.Info("session expired, redirecting to login", "from", current)
	g.nav.Navigate(navigation.LoginPath)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (g *Gateway) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := g.Do(ctx, Request{Method: method, Path: path, Body: body, Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get fetches path and decodes the JSON result into out (which may be nil).
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	return g.call(ctx, http.MethodGet, path, query, nil, out)
}

func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.call(ctx, http.MethodPost, path, nil, body, out)
}

func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.call(ctx, http.MethodPut, path, nil, body, out)
}

func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.call(ctx, http.MethodDelete, path, nil, nil, out)
}

// PathID formats an id path segment.
func PathID(prefix string, id int64, suffix ...string) string {
	p := fmt.Sprintf("%s/%d", prefix, id)
	for _, s := range suffix {
		p += "/" + url.PathEscape(s)
	}
	return p
}
