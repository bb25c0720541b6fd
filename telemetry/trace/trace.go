//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package trace installs an OTLP trace pipeline and exposes the Tracer used
// by the workflow engine. Until Start is called, Tracer is a no-op.
package trace

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	itelemetry "trpc.group/trpc-go/trpc-flow-go/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Tracer is the tracer used for workflow spans.
var Tracer trace.Tracer = noop.NewTracerProvider().Tracer(itelemetry.InstrumentName)

// Start builds an OTLP exporter, installs a batching tracer provider as the
// global provider and points Tracer at it. The returned clean function
// flushes and shuts the provider down.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	options := &options{
		serviceName:      itelemetry.ServiceName,
		serviceVersion:   itelemetry.ServiceVersion,
		serviceNamespace: itelemetry.ServiceNamespace,
		protocol:         itelemetry.ProtocolGRPC,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.tracesEndpoint == "" {
		options.tracesEndpoint = tracesEndpoint(options.protocol)
	}

	res, err := buildResource(ctx, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter *otlptrace.Exporter
	switch options.protocol {
	case itelemetry.ProtocolHTTP:
		exporter, err = newHTTPExporter(ctx, options)
	default:
		exporter, err = newGRPCExporter(ctx, options)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	Tracer = tp.Tracer(itelemetry.InstrumentName)

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

func newHTTPExporter(ctx context.Context, options *options) (*otlptrace.Exporter, error) {
	endpoint, urlPath := options.tracesEndpoint, ""
	if options.tracesEndpointURL != "" {
		var err error
		if endpoint, urlPath, err = parseEndpointURL(options.tracesEndpointURL); err != nil {
			return nil, err
		}
	}
	httpOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	}
	if urlPath != "" {
		httpOpts = append(httpOpts, otlptracehttp.WithURLPath(urlPath))
	}
	if len(options.headers) > 0 {
		httpOpts = append(httpOpts, otlptracehttp.WithHeaders(options.headers))
	}
	return otlptracehttp.New(ctx, httpOpts...)
}

func newGRPCExporter(ctx context.Context, options *options) (*otlptrace.Exporter, error) {
	endpoint := options.tracesEndpoint
	if options.tracesEndpointURL != "" {
		// gRPC has no URL path, only the host part is used.
		if u, err := url.Parse(withScheme(options.tracesEndpointURL)); err == nil && u.Host != "" {
			endpoint = u.Host
		}
	}
	conn, err := itelemetry.NewGRPCConn(endpoint)
	if err != nil {
		return nil, err
	}
	grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithGRPCConn(conn)}
	if len(options.headers) > 0 {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(options.headers))
	}
	return otlptracegrpc.New(ctx, grpcOpts...)
}

func tracesEndpoint(protocol string) string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	switch protocol {
	case itelemetry.ProtocolHTTP:
		return "localhost:4318"
	default:
		return "localhost:4317"
	}
}

func withScheme(in string) string {
	if strings.Contains(in, "://") {
		return in
	}
	return "http://" + in
}

// parseEndpointURL splits a full collector URL into the host:port and path
// parts expected by the HTTP exporter.
func parseEndpointURL(in string) (endpoint string, urlPath string, err error) {
	u, err := url.Parse(withScheme(in))
	if err != nil {
		return "", "", fmt.Errorf("invalid endpoint url %q: %w", in, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("invalid endpoint url %q: missing host", in)
	}
	urlPath = u.Path
	if urlPath == "" {
		urlPath = "/"
	}
	return u.Host, urlPath, nil
}

// Option is a function that configures tracing options.
type Option func(*options)

type options struct {
	tracesEndpoint     string
	tracesEndpointURL  string
	serviceName        string
	serviceVersion     string
	serviceNamespace   string
	protocol           string
	headers            map[string]string
	resourceAttributes []attribute.KeyValue
}

// WithEndpoint sets the traces endpoint (host and port) the exporter connects to.
// It takes precedence over OTEL_EXPORTER_OTLP_TRACES_ENDPOINT and OTEL_EXPORTER_OTLP_ENDPOINT.
func WithEndpoint(endpoint string) Option {
	return func(opts *options) {
		opts.tracesEndpoint = endpoint
	}
}

// WithEndpointURL sets a full collector URL such as
// "http://localhost:3000/api/public/otel". It overrides WithEndpoint.
func WithEndpointURL(endpointURL string) Option {
	return func(opts *options) {
		opts.tracesEndpointURL = endpointURL
	}
}

// WithProtocol sets the export protocol, "grpc" (default) or "http".
func WithProtocol(protocol string) Option {
	return func(opts *options) {
		opts.protocol = protocol
	}
}

// WithHeaders sets headers sent with every export request.
func WithHeaders(headers map[string]string) Option {
	return func(opts *options) {
		opts.headers = headers
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(serviceName string) Option {
	return func(opts *options) {
		opts.serviceName = serviceName
	}
}

// WithServiceNamespace overrides the service.namespace resource attribute.
func WithServiceNamespace(serviceNamespace string) Option {
	return func(opts *options) {
		opts.serviceNamespace = serviceNamespace
	}
}

// WithServiceVersion overrides the service.version resource attribute.
func WithServiceVersion(serviceVersion string) Option {
	return func(opts *options) {
		opts.serviceVersion = serviceVersion
	}
}

// WithResourceAttributes appends custom resource attributes.
func WithResourceAttributes(attrs ...attribute.KeyValue) Option {
	return func(opts *options) {
		opts.resourceAttributes = append(opts.resourceAttributes, attrs...)
	}
}

func buildResource(ctx context.Context, options *options) (*resource.Resource, error) {
	// Later options win: environment overrides code defaults, explicit
	// resource attributes override the environment.
	resourceOpts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceNamespace(options.serviceNamespace),
			semconv.ServiceName(options.serviceName),
			semconv.ServiceVersion(options.serviceVersion),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	}
	if len(options.resourceAttributes) > 0 {
		resourceOpts = append(resourceOpts, resource.WithAttributes(options.resourceAttributes...))
	}
	return resource.New(ctx, resourceOpts...)
}
