//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"net/http"
	"time"
)

// HTTPClientNewFunc is the function type for creating a new HTTP client.
type HTTPClientNewFunc func(opts ...HTTPClientOption) *http.Client

// DefaultNewHTTPClient builds the HTTP client shared by the backends.
var DefaultNewHTTPClient HTTPClientNewFunc = func(opts ...HTTPClientOption) *http.Client {
	options := &HTTPClientOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &http.Client{
		Transport: options.Transport,
		Timeout:   options.Timeout,
	}
}

// HTTPClientOption is the option for the HTTP client.
type HTTPClientOption func(*HTTPClientOptions)

// WithHTTPClientTransport is the option for the HTTP client transport.
func WithHTTPClientTransport(transport http.RoundTripper) HTTPClientOption {
	return func(options *HTTPClientOptions) {
		options.Transport = transport
	}
}

// WithHTTPClientTimeout bounds every request made by the client. Zero means
// no timeout.
func WithHTTPClientTimeout(timeout time.Duration) HTTPClientOption {
	return func(options *HTTPClientOptions) {
		options.Timeout = timeout
	}
}

// HTTPClientOptions is the options for the HTTP client.
type HTTPClientOptions struct {
	Transport http.RoundTripper
	Timeout   time.Duration
}
