//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// Package cos mirrors written artifacts to Tencent Cloud Object Storage.
//
// Authentication credentials can be provided via the TCOS_SECRETID and
// TCOS_SECRETKEY environment variables (recommended) or the WithSecretID and
// WithSecretKey options.
package cos

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tencentyun/cos-go-sdk-v5"

	"trpc.group/trpc-go/trpc-genmedia-go/artifact"
)

const defaultTimeout = 60 * time.Second

// Mirror uploads artifacts to a COS bucket. Each upload gets a unique object
// key so repeated generations never clobber each other remotely.
type Mirror struct {
	cosClient *cos.Client
	prefix    string
}

type options struct {
	secretID   string
	secretKey  string
	timeout    time.Duration
	prefix     string
	httpClient *http.Client
}

// Option configures the COS mirror.
type Option func(*options)

// WithSecretID sets the COS secret ID, overriding TCOS_SECRETID.
func WithSecretID(id string) Option {
	return func(o *options) { o.secretID = id }
}

// WithSecretKey sets the COS secret key, overriding TCOS_SECRETKEY.
func WithSecretKey(key string) Option {
	return func(o *options) { o.secretKey = key }
}

// WithTimeout sets the upload timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithPrefix sets the object key prefix, "genmedia" by default.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// NewMirror creates a COS mirror for the given bucket URL, e.g.
// "https://bucket.cos.region.myqcloud.com".
func NewMirror(bucketURL string, opts ...Option) (*Mirror, error) {
	o := &options{
		timeout:   defaultTimeout,
		prefix:    "genmedia",
		secretID:  os.Getenv("TCOS_SECRETID"),
		secretKey: os.Getenv("TCOS_SECRETKEY"),
	}
	for _, opt := range opts {
		opt(o)
	}
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket url: %w", err)
	}
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: o.timeout,
			Transport: &cos.AuthorizationTransport{
				SecretID:  o.secretID,
				SecretKey: o.secretKey,
			},
		}
	}
	return &Mirror{
		cosClient: cos.NewClient(&cos.BaseURL{BucketURL: u}, httpClient),
		prefix:    o.prefix,
	}, nil
}

// Save implements artifact.Mirror.
func (m *Mirror) Save(ctx context.Context, name string, art *artifact.Artifact) error {
	key := fmt.Sprintf("%s/%s/%s", m.prefix, uuid.NewString(), name)
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: art.MimeType,
		},
	}
	if _, err := m.cosClient.Object.Put(ctx, key, bytes.NewReader(art.Data), opt); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}
