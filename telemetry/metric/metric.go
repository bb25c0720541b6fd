//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package metric exports workflow run and node metrics over OTLP.
package metric

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	itelemetry "trpc.group/trpc-go/trpc-flow-go/internal/telemetry"
)

// nodeDurationBuckets are the default bucket boundaries, in seconds, for node durations.
var nodeDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// InitMeterProvider initializes the meter provider and the workflow meters.
func InitMeterProvider(mp metric.MeterProvider) error {
	if mp == nil {
		return fmt.Errorf("meter provider is nil")
	}
	itelemetry.MeterProvider = mp
	itelemetry.FlowMeter = mp.Meter(itelemetry.MeterNameFlow)

	var err error
	if itelemetry.FlowMetricRunCount, err = itelemetry.FlowMeter.Int64Counter(
		itelemetry.MetricRunCount,
		metric.WithDescription("Total number of finished workflow runs"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", itelemetry.MetricRunCount, err)
	}
	if itelemetry.FlowMetricNodeCount, err = itelemetry.FlowMeter.Int64Counter(
		itelemetry.MetricNodeCount,
		metric.WithDescription("Total number of executed workflow nodes"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", itelemetry.MetricNodeCount, err)
	}
	if itelemetry.FlowMetricNodeDuration, err = itelemetry.FlowMeter.Float64Histogram(
		itelemetry.MetricNodeDuration,
		metric.WithDescription("Duration of workflow node execution"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(nodeDurationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", itelemetry.MetricNodeDuration, err)
	}
	return nil
}

// GetMeterProvider returns the meter provider.
func GetMeterProvider() metric.MeterProvider {
	return itelemetry.MeterProvider
}

// Start creates an OTLP meter provider, installs it for the workflow meters
// and returns a function that flushes and shuts it down.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	mp, err := NewMeterProvider(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := InitMeterProvider(mp); err != nil {
		return nil, err
	}
	return func() error {
		return mp.Shutdown(context.Background())
	}, nil
}

// NewMeterProvider creates an OTLP meter provider. When no endpoint option
// is given, OTEL_EXPORTER_OTLP_METRICS_ENDPOINT and then
// OTEL_EXPORTER_OTLP_ENDPOINT are consulted before the protocol default.
func NewMeterProvider(ctx context.Context, opts ...Option) (*sdkmetric.MeterProvider, error) {
	o := &options{
		serviceName:      itelemetry.ServiceName,
		serviceVersion:   itelemetry.ServiceVersion,
		serviceNamespace: itelemetry.ServiceNamespace,
		protocol:         itelemetry.ProtocolGRPC,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.endpoint == "" {
		o.endpoint = metricsEndpoint(o.protocol)
	}

	res, err := buildResource(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch o.protocol {
	case itelemetry.ProtocolHTTP:
		exporter, err = otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(o.endpoint),
			otlpmetrichttp.WithInsecure())
	default:
		exporter, err = newGRPCExporter(ctx, o.endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

func newGRPCExporter(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
	conn, err := itelemetry.NewGRPCConn(endpoint)
	if err != nil {
		return nil, err
	}
	return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
}

func metricsEndpoint(protocol string) string {
	for _, key := range []string{"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		if endpoint := os.Getenv(key); endpoint != "" {
			return endpoint
		}
	}
	if protocol == itelemetry.ProtocolHTTP {
		// otlpmetrichttp appends /v1/metrics itself.
		return "localhost:4318"
	}
	return "localhost:4317"
}

// Option configures NewMeterProvider.
type Option func(*options)

type options struct {
	endpoint           string
	serviceName        string
	serviceVersion     string
	serviceNamespace   string
	protocol           string
	resourceAttributes []attribute.KeyValue
}

// WithEndpoint sets the collector host and port, e.g. "example.com:4317".
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithProtocol selects "grpc" (default) or "http".
func WithProtocol(protocol string) Option {
	return func(o *options) { o.protocol = protocol }
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithServiceNamespace overrides the service.namespace resource attribute.
func WithServiceNamespace(namespace string) Option {
	return func(o *options) { o.serviceNamespace = namespace }
}

// WithServiceVersion overrides the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(o *options) { o.serviceVersion = version }
}

// WithResourceAttributes appends custom resource attributes.
func WithResourceAttributes(attrs ...attribute.KeyValue) Option {
	return func(o *options) { o.resourceAttributes = append(o.resourceAttributes, attrs...) }
}

func buildResource(ctx context.Context, o *options) (*resource.Resource, error) {
	resourceOpts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceNamespace(o.serviceNamespace),
			semconv.ServiceName(o.serviceName),
			semconv.ServiceVersion(o.serviceVersion),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	}
	if len(o.resourceAttributes) > 0 {
		resourceOpts = append(resourceOpts, resource.WithAttributes(o.resourceAttributes...))
	}
	return resource.New(ctx, resourceOpts...)
}
