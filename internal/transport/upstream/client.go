// Package upstream is the transport collaborator for registry services.
// Every query is a POST with a single-field JSON body; the response may be a
// JSON document, or raw text when the upstream fails.
package upstream

//go:generate mockgen -source=client.go -destination=mock/client.go -package=mock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"padron/internal/query/models"
	id "padron/pkg/domain"
	dErrors "padron/pkg/domain-errors"
)

// maxBodyBytes caps upstream response bodies; registries return small
// documents and anything larger is noise.
const maxBodyBytes = 1 << 20

// Response is the outcome of one upstream call. Payload is only decoded for
// 2xx responses; for failures Body carries the diagnostic text.
type Response struct {
	StatusCode int
	Body       string
	Payload    models.Document
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues queries against upstream registry endpoints.
type Client interface {
	Post(ctx context.Context, endpoint string, field id.QueryField, value string) (*Response, error)
}

// HTTPClient is the production Client over net/http.
type HTTPClient struct {
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*HTTPClient)

func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.http.Timeout = timeout
	}
}

func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		http:   &http.Client{Timeout: 15 * time.Second},
		tracer: otel.Tracer("padron/upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends {field: value} to the endpoint. Transport and JSON-decode
// failures return an error; any HTTP status comes back in the Response for
// the caller to judge.
func (c *HTTPClient) Post(ctx context.Context, endpoint string, field id.QueryField, value string) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.post",
		trace.WithAttributes(
			attribute.String("upstream.endpoint", endpoint),
			attribute.String("upstream.field", string(field)),
		),
	)
	defer span.End()

	body, err := json.Marshal(map[string]string{string(field): value})
	if err != nil {
		return nil, fmt.Errorf("marshal query body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "upstream request failed")
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("upstream.status", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "read upstream response")
	}

	out := &Response{StatusCode: resp.StatusCode, Body: string(raw)}
	if !out.OK() {
		// Non-2xx bodies are diagnostic text, not data.
		return out, nil
	}

	var payload models.Document
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "decode upstream payload")
	}
	out.Payload = payload

	if c.logger != nil {
		c.logger.DebugContext(ctx, "upstream call completed",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
	}
	return out, nil
}
