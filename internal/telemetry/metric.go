//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric names.
const (
	MeterNameFlow      = "trpc.flow.go.workflow"
	MetricRunCount     = "flow.run.count"
	MetricNodeCount    = "flow.node.count"
	MetricNodeDuration = "flow.node.duration"
)

var (
	MeterProvider metric.MeterProvider = noop.NewMeterProvider()

	FlowMeter              metric.Meter            = MeterProvider.Meter(MeterNameFlow)
	FlowMetricRunCount     metric.Int64Counter     = noop.Int64Counter{}
	FlowMetricNodeCount    metric.Int64Counter     = noop.Int64Counter{}
	FlowMetricNodeDuration metric.Float64Histogram = noop.Float64Histogram{}
)

// IncRunCount counts one finished run by its terminal status.
func IncRunCount(ctx context.Context, status string) {
	FlowMetricRunCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String(KeyRunStatus, status)))
}

// ReportNodeMetrics counts one node execution and records its duration in seconds.
func ReportNodeMetrics(ctx context.Context, nodeType, status string, duration time.Duration) {
	as := metric.WithAttributes(
		attribute.String(KeyNodeType, nodeType),
		attribute.String(KeyNodeStatus, status),
	)
	FlowMetricNodeCount.Add(ctx, 1, as)
	FlowMetricNodeDuration.Record(ctx, duration.Seconds(), as)
}
