// Package api is the data access layer for the remote registration resource.
// Each call is a single attempt: no retries, no client-side timeout.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/signup/internal/config"
	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/registration"
	"github.com/zjrosen/signup/internal/tracing"
)

const resourcePath = "/register"

// Client talks to the tenant-scoped registration resource.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTracer records a span for every call.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client. baseURL may contain the {tenant} placeholder.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		tracer:  noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the collection URL for tenant.
func (c *Client) Endpoint(tenant string) string {
	base := config.ExpandBaseURL(c.baseURL, url.PathEscape(tenant))
	return strings.TrimRight(base, "/") + resourcePath
}

// List fetches every registration of tenant, unfiltered.
func (c *Client) List(ctx context.Context, tenant string) ([]registration.Registration, error) {
	ctx, span := c.start(ctx, tracing.SpanList, tenant)
	defer span.End()

	var regs []registration.Registration
	if err := c.do(ctx, span, http.MethodGet, c.Endpoint(tenant), nil, &regs); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(regs)))
	return regs, nil
}

// Create submits in and returns the server acknowledgement, not the record.
func (c *Client) Create(ctx context.Context, tenant string, in registration.Input) (registration.Ack, error) {
	ctx, span := c.start(ctx, tracing.SpanCreate, tenant)
	defer span.End()

	body, err := json.Marshal(in)
	if err != nil {
		return registration.Ack{}, fmt.Errorf("encoding registration: %w", err)
	}

	var ack registration.Ack
	if err := c.do(ctx, span, http.MethodPost, c.Endpoint(tenant), body, &ack); err != nil {
		return registration.Ack{}, err
	}
	return ack, nil
}

// Delete removes the registration id and returns the record the resource
// reports as deleted.
func (c *Client) Delete(ctx context.Context, tenant, id string) (registration.Registration, error) {
	ctx, span := c.start(ctx, tracing.SpanDelete, tenant)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrRegistrationID, id))

	var reg registration.Registration
	endpoint := c.Endpoint(tenant) + "/" + url.PathEscape(id)
	if err := c.do(ctx, span, http.MethodDelete, endpoint, nil, &reg); err != nil {
		return registration.Registration{}, err
	}
	return reg, nil
}

func (c *Client) start(ctx context.Context, name, tenant string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrTenant, tenant)),
	)
}

// do sends one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, span trace.Span, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String(tracing.AttrHTTPMethod, method),
		attribute.String(tracing.AttrURL, endpoint),
	)
	log.Debug(log.CatAPI, "request", "method", method, "url", endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		reqErr := newTransportError(req, err)
		fail(span, reqErr)
		log.ErrorErr(log.CatAPI, "request failed", err, "method", method, "url", endpoint)
		return reqErr
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		reqErr := newStatusError(req, resp)
		fail(span, reqErr)
		log.Warn(log.CatAPI, "non-success response", "method", method, "url", endpoint, "status", resp.StatusCode)
		return reqErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		fail(span, err)
		return fmt.Errorf("decoding %s %s response: %w", method, endpoint, err)
	}

	span.SetStatus(codes.Ok, "")
	log.Debug(log.CatAPI, "response", "method", method, "url", endpoint, "status", resp.StatusCode)
	return nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
