//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package httpclient is the shared REST client for providers without a Go
// SDK. It applies authentication headers and retries transient failures with
// exponential backoff before surfacing a transport error.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"trpc.group/trpc-go/trpc-genmedia-go/media"
)

const (
	defaultTimeout  = 120 * time.Second
	defaultMaxTries = 3
)

// StatusError is a non-2xx provider response. 5xx and 429 unwrap to
// media.ErrTransport; other statuses are left for the adapter to classify.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Code, strings.TrimSpace(body))
}

// Unwrap maps retryable statuses onto the transport sentinel.
func (e *StatusError) Unwrap() error {
	if e.retryable() {
		return media.ErrTransport
	}
	return nil
}

func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Client is an authenticated JSON/binary HTTP client with bounded retry.
type Client struct {
	hc       *http.Client
	baseURL  string
	headers  map[string]string
	maxTries uint
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the URL prefix for relative paths.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithBearer adds an Authorization: Bearer header to every request.
func WithBearer(token string) Option {
	return func(c *Client) { c.headers["Authorization"] = "Bearer " + token }
}

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithMaxTries bounds the retry budget for transient failures.
func WithMaxTries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTries = uint(n)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		hc:       &http.Client{Timeout: defaultTimeout},
		headers:  make(map[string]string),
		maxTries: defaultMaxTries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// url resolves path against the base URL. Absolute URLs pass through and are
// flagged as external when they point outside the configured base, such as a
// CDN host serving finished artifacts.
func (c *Client) url(path string) (target string, external bool) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, c.baseURL == "" || !strings.HasPrefix(path, c.baseURL+"/")
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/"), false
}

// do performs one request with retry. The body is rebuilt from raw per
// attempt so retries never send a drained reader.
func (c *Client) do(ctx context.Context, method, path, contentType string, raw []byte) ([]byte, string, error) {
	attempt := func() (*attemptResult, error) {
		var body io.Reader
		if raw != nil {
			body = bytes.NewReader(raw)
		}
		target, external := c.url(path)
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		// Auth headers stay on the configured API host and are never sent to
		// external hosts.
		if !external {
			for k, v := range c.headers {
				req.Header.Set(k, v)
			}
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{Code: resp.StatusCode, Body: string(data)}
			if statusErr.retryable() {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}
		return &attemptResult{data: data, contentType: resp.Header.Get("Content-Type")}, nil
	}

	res, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, "", statusErr
		}
		return nil, "", media.Transportf("%s %s: %v", method, path, err)
	}
	return res.data, res.contentType, nil
}

type attemptResult struct {
	data        []byte
	contentType string
}

// PostJSON sends a JSON body and decodes a JSON response into out (skipped
// when out is nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	data, _, err := c.do(ctx, http.MethodPost, path, "application/json", raw)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetJSON decodes a JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	data, _, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostBinary sends a JSON body and returns the raw response bytes plus the
// reported content type. Used for endpoints that stream audio back.
func (c *Client) PostBinary(ctx context.Context, path string, in any) ([]byte, string, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", raw)
}

// Download fetches raw bytes from an absolute or relative URL.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	data, _, err := c.do(ctx, http.MethodGet, url, "", nil)
	return data, err
}

// FormFile is one file attached to a multipart form.
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// PostForm uploads a multipart form with the given fields and files and
// decodes the JSON response into out (skipped when out is nil).
func (c *Client) PostForm(ctx context.Context, path string, fields map[string]string, files []FormFile, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create form file %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("write form file %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	data, _, err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
