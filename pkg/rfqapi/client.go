// Package rfqapi is the HTTP client for the SmartRFQ REST backend. Every call
// obtains a fresh bearer token from an oauth2.TokenSource.
package rfqapi

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

	"smartrfq/pkg/apierr"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
	tracer  trace.Tracer
	log     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log.With("component", "RFQAPI") }
}

func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		tracer:  tracing.Tracer("rfqapi"),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StaticToken returns a token source for a fixed bearer token. An empty token
// yields an error on every call so requests fail as unauthenticated.
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return missingToken{}
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

type missingToken struct{}

func (missingToken) Token() (*oauth2.Token, error) {
	return nil, errors.New("no identity token available; sign in first")
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload interface{}) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("encode request: %w", err)
	}
	req.body = bytes.NewReader(b)
	req.contentType = "application/json"
	return req, nil
}

// do executes r and returns the raw 2xx body.
func (c *Client) do(ctx context.Context, op string, r request) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "rfqapi."+op, trace.WithAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.route", r.path),
	))
	defer span.End()

	tok, err := c.tokens.Token()
	if err != nil {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, apierr.Auth(err)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, apierr.New(0, "transport", fmt.Errorf("%s %s: %w", r.method, r.path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.New(resp.StatusCode, "read_body", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(body, resp.StatusCode)
		span.SetStatus(codes.Error, msg)
		c.log.Warn("api call failed", "op", op, "status", resp.StatusCode, "error", msg)
		return nil, apierr.New(resp.StatusCode, http.StatusText(resp.StatusCode), errors.New(msg))
	}
	return body, nil
}

// errorMessage extracts the most useful message a failed response carries.
func errorMessage(body []byte, status int) string {
	var payload map[string]interface{}
	if json.Unmarshal(body, &payload) == nil {
		for _, k := range []string{"error", "message", "detail"} {
			switch v := payload[k].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]interface{}:
				if m, ok := v["message"].(string); ok && m != "" {
					return m
				}
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 300 {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// decodeList accepts a bare array, or an object wrapping the array under
// "data", the resource name, or "items". Anything else yields an empty list.
func decodeList[T any](c *Client, body []byte, resource string) []T {
	var direct []T
	if err := json.Unmarshal(body, &direct); err == nil {
		return nonNil(direct)
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err == nil {
		for _, key := range []string{"data", resource, "items"} {
			raw, ok := wrapper[key]
			if !ok {
				continue
			}
			var inner []T
			if err := json.Unmarshal(raw, &inner); err == nil {
				return nonNil(inner)
			}
		}
	}
	c.log.Warn("unexpected response shape", "kind", apierr.KindShape, "resource", resource)
	return []T{}
}

// decodeOne accepts the object itself or an object wrapping it under "data"
// or the resource name.
func decodeOne[T any](body []byte, resource string) (*T, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err == nil {
		for _, key := range []string{"data", resource} {
			raw, ok := wrapper[key]
			if !ok || len(raw) == 0 || raw[0] != '{' {
				continue
			}
			var inner T
			if err := json.Unmarshal(raw, &inner); err == nil {
				return &inner, nil
			}
		}
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &apierr.Error{Kind: apierr.KindShape, Code: "decode", Err: fmt.Errorf("decode %s: %w", resource, err)}
	}
	return &out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func getList[T any](ctx context.Context, c *Client, op, path, resource string, query url.Values) ([]T, error) {
	body, err := c.do(ctx, op, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[T](c, body, resource), nil
}

func sendJSON[T any](ctx context.Context, c *Client, op, method, path, resource string, payload interface{}) (*T, error) {
	r, err := jsonRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, op, r)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](body, resource)
}

func (c *Client) send(ctx context.Context, op, method, path string, payload interface{}) error {
	r, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, r)
	return err
}
