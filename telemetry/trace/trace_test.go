//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func clearEndpointEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func TestTracesEndpoint(t *testing.T) {
	clearEndpointEnv(t)
	assert.Equal(t, "localhost:4317", tracesEndpoint("grpc"))
	assert.Equal(t, "localhost:4318", tracesEndpoint("http"))

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "generic:4317")
	assert.Equal(t, "generic:4317", tracesEndpoint("grpc"))

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "traces:4317")
	assert.Equal(t, "traces:4317", tracesEndpoint("grpc"))
}

func TestParseEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		endpoint string
		urlPath  string
		wantErr  bool
	}{
		{name: "scheme and path", in: "http://localhost:3000/api/public/otel", endpoint: "localhost:3000", urlPath: "/api/public/otel"},
		{name: "no scheme", in: "collector:4318/otlp/v1/traces", endpoint: "collector:4318", urlPath: "/otlp/v1/traces"},
		{name: "no path", in: "example.com", endpoint: "example.com", urlPath: "/"},
		{name: "missing host", in: "http:///missing-host", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, urlPath, err := parseEndpointURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, endpoint)
			assert.Equal(t, tt.urlPath, urlPath)
		})
	}
}

func TestStart(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "grpc default", opts: nil},
		{name: "grpc with url and headers", opts: []Option{
			WithProtocol("grpc"),
			WithEndpoint("localhost:4317"),
			WithEndpointURL("localhost:9999"),
			WithHeaders(map[string]string{"Authorization": "Bearer abc"}),
		}},
		{name: "http with url", opts: []Option{
			WithProtocol("http"),
			WithEndpointURL("http://localhost:4318/custom/path"),
			WithHeaders(map[string]string{"X-Test": "yes"}),
		}},
		{name: "http without scheme", opts: []Option{
			WithProtocol("http"),
			WithEndpointURL("collector:4318/otlp/v1/traces"),
		}},
		{name: "http invalid url", opts: []Option{
			WithProtocol("http"),
			WithEndpointURL("http:///bad"),
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEndpointEnv(t)
			clean, err := Start(context.Background(), tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, clean)
			_ = clean()
		})
	}
}

func TestStartInstallsTracer(t *testing.T) {
	clearEndpointEnv(t)
	clean, err := Start(context.Background(), WithProtocol("http"), WithEndpoint("127.0.0.1:1"))
	require.NoError(t, err)

	_, span := Tracer.Start(context.Background(), "test-span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	// Nothing listens on the endpoint, so shutdown may report an export error.
	_ = clean()
}

func TestBuildResource(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "env-service")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "team=ai,env=staging")

	opts := &options{}
	WithServiceName("option-service")(opts)
	WithServiceNamespace("custom-ns")(opts)
	WithServiceVersion("1.2.3")(opts)
	WithResourceAttributes(attribute.String("team", "flow"), attribute.String("custom", "value"))(opts)

	res, err := buildResource(context.Background(), opts)
	require.NoError(t, err)

	got := make(map[string]string)
	for iter := res.Iter(); iter.Next(); {
		kv := iter.Attribute()
		if kv.Value.Type() == attribute.STRING {
			got[string(kv.Key)] = kv.Value.AsString()
		}
	}
	assert.Equal(t, "env-service", got[string(semconv.ServiceNameKey)])
	assert.Equal(t, "staging", got["env"])
	assert.Equal(t, "flow", got["team"])
	assert.Equal(t, "value", got["custom"])
	assert.Equal(t, "custom-ns", got[string(semconv.ServiceNamespaceKey)])
	assert.Equal(t, "1.2.3", got[string(semconv.ServiceVersionKey)])
}
