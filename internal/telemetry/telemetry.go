//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the shared span names, attribute keys and meter
// instruments used by the workflow engine. The public telemetry/trace and
// telemetry/metric packages install real providers on top of these globals.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcDial is a package-level variable to allow test injection of a custom dialer.
var grpcDial = grpc.Dial

// telemetry service constants.
const (
	ServiceName      = "trpc-flow-go"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go-flow"
	InstrumentName   = "trpc.flow.go"

	SpanNameRunWorkflow = "run_workflow"
	SpanNamePrefixNode  = "execute_node"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// Attribute keys attached to workflow spans and metrics.
const (
	KeyRunID        = "trpc.flow.run.id"
	KeyRunStatus    = "trpc.flow.run.status"
	KeyRunNodeCount = "trpc.flow.run.node_count"
	KeyNodeID       = "trpc.flow.node.id"
	KeyNodeLabel    = "trpc.flow.node.label"
	KeyNodeType     = "trpc.flow.node.type"
	KeyNodeStatus   = "trpc.flow.node.status"
	KeyNodeInput    = "trpc.flow.node.input"
	KeyNodeOutput   = "trpc.flow.node.output"
	KeyUnresolved   = "trpc.flow.run.unresolved"
	KeyErrorType    = "error.type"
)

// NewNodeSpanName creates the span name for a node execution, e.g. "execute_node ai_chat".
func NewNodeSpanName(nodeType string) string {
	if nodeType == "" {
		return SpanNamePrefixNode
	}
	return fmt.Sprintf("%s %s", SpanNamePrefixNode, nodeType)
}

// TraceRunStart records the attributes known when a run begins.
func TraceRunStart(span trace.Span, runID string, nodeCount int) {
	span.SetAttributes(
		attribute.String(KeyRunID, runID),
		attribute.Int(KeyRunNodeCount, nodeCount),
	)
}

// TraceRunEnd records the final status of a run.
func TraceRunEnd(span trace.Span, status string, unresolved []string, err error) {
	span.SetAttributes(attribute.String(KeyRunStatus, status))
	if len(unresolved) > 0 {
		span.SetAttributes(attribute.StringSlice(KeyUnresolved, unresolved))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(KeyErrorType, fmt.Sprintf("%T", err)))
	}
}

// NodeAttributes describes one node execution.
type NodeAttributes struct {
	RunID    string
	NodeID   string
	Label    string
	NodeType string
}

func (a NodeAttributes) toAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(KeyNodeID, a.NodeID),
		attribute.String(KeyNodeType, a.NodeType),
	}
	if a.RunID != "" {
		attrs = append(attrs, attribute.String(KeyRunID, a.RunID))
	}
	if a.Label != "" {
		attrs = append(attrs, attribute.String(KeyNodeLabel, a.Label))
	}
	return attrs
}

// TraceNode records a finished node execution on its span.
func TraceNode(span trace.Span, attrs NodeAttributes, input, output string, err error) {
	span.SetAttributes(attrs.toAttributes()...)
	span.SetAttributes(
		attribute.String(KeyNodeInput, input),
		attribute.String(KeyNodeOutput, output),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(KeyErrorType, fmt.Sprintf("%T", err)))
	}
}

// NewGRPCConn creates a new gRPC connection to the OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	// Note the use of insecure transport here. TLS is recommended in production.
	conn, err := grpcDial(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}
