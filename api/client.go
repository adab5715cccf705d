package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	default_address = "https://api.openai.com"

	_header_organization = "OpenAI-Organization"
	_header_request_id   = "X-Request-Id"
)

type Client struct {
	client       *http.Client
	Endpoint     string
	key          string
	organization string
	tracer       trace.Tracer
	metrics      clientMetrics
}

type clientMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newClientMetrics(m metric.Meter) clientMetrics {
	var cm clientMetrics
	var err error
	cm.requests, err = m.Int64Counter(
		"openai.client.requests",
		metric.WithDescription("API requests sent, by method and status"),
	)
	if err != nil {
		cm.requests, _ = metricnoop.Meter{}.Int64Counter("openai.client.requests")
	}
	cm.duration, err = m.Float64Histogram(
		"openai.client.request.duration",
		metric.WithDescription("Time until the API response headers arrive"),
		metric.WithUnit("s"),
	)
	if err != nil {
		cm.duration, _ = metricnoop.Meter{}.Float64Histogram("openai.client.request.duration")
	}
	return cm
}

func (cm clientMetrics) record(ctx context.Context, method string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)
	cm.requests.Add(ctx, 1, attrs)
	cm.duration.Record(ctx, elapsed.Seconds(), attrs)
}

type Option func(c *Client)

// WithOrganization sends the organization header on every request.
func WithOrganization(org string) Option {
	return func(c *Client) {
		c.organization = org
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMeter records request count and latency on m.
func WithMeter(m metric.Meter) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = newClientMetrics(m)
		}
	}
}

func NewClient(endpoint, key string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = default_address
	}
	c := &Client{
		client:   http.DefaultClient,
		Endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		tracer:   noop.NewTracerProvider().Tracer("openai-cli"),
		metrics:  newClientMetrics(metricnoop.Meter{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call is a successful (2xx) response whose body has not been consumed yet.
type call struct {
	resp *http.Response
	span trace.Span
}

func (c *call) organization() string {
	return c.resp.Header.Get(_header_organization)
}

func (c *call) Close() error {
	c.span.End()
	return c.resp.Body.Close()
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*call, error) {
	urlString := c.Endpoint + path

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", urlString),
		),
	)

	req, err := http.NewRequestWithContext(ctx, method, urlString, body)
	if err != nil {
		span.End()
		return nil, &Error{Message: fmt.Sprintf("client failed create request: %v", err)}
	}

	requestID := uuid.NewString()
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	header.Set("Accept", "application/json")
	header.Set("Authorization", fmt.Sprintf("Bearer %s", c.key))
	header.Set(_header_request_id, requestID)
	if c.organization != "" {
		header.Set(_header_organization, c.organization)
	}
	req.Header = header

	slog.Debug("api request", "method", method, "url", urlString, "request_id", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.record(ctx, method, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, &Error{Message: fmt.Sprintf("error communicating with API: %v", err)}
	}
	c.metrics.record(ctx, method, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	slog.Debug("api response", "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode > 299 {
		defer span.End()
		defer resp.Body.Close()
		apiErr := newError(resp)
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	return &call{resp: resp, span: span}, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in any) (*call, error) {
	if in == nil {
		return c.send(ctx, method, path, nil, "")
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("client failed encode request: %v", err)}
	}
	return c.send(ctx, method, path, bytes.NewReader(b), "application/json")
}

// decode sends in as JSON (when non-nil) and decodes the response body into out.
func (c *Client) decode(ctx context.Context, method, path string, in, out any) error {
	res, err := c.sendJSON(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer res.Close()

	if err := json.NewDecoder(res.resp.Body).Decode(out); err != nil {
		return &Error{
			Message:      fmt.Sprintf("invalid response body from API: %v", err),
			HTTPStatus:   res.resp.StatusCode,
			Organization: res.organization(),
		}
	}
	return nil
}

// object is decode for resources that are displayed as they come.
func (c *Client) object(ctx context.Context, method, path string, in any) (*Object, error) {
	res, err := c.sendJSON(ctx, method, path, in)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	return readObject(res)
}

func readObject(res *call) (*Object, error) {
	b, err := io.ReadAll(res.resp.Body)
	if err != nil {
		return nil, &Error{
			Message:      fmt.Sprintf("client failed read body: %v", err),
			HTTPStatus:   res.resp.StatusCode,
			Organization: res.organization(),
		}
	}
	if !json.Valid(b) {
		return nil, &Error{
			Message:      fmt.Sprintf("Invalid response object from API: %q", string(b)),
			HTTPStatus:   res.resp.StatusCode,
			Organization: res.organization(),
		}
	}
	return &Object{Raw: b, Organization: res.organization()}, nil
}
