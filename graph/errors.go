//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNodeIDEmpty     = errors.New("node ID cannot be empty")
	ErrNodeExists      = errors.New("node already exists")
	ErrNodeNotFound    = errors.New("node not found")
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrEdgeEndpoints   = errors.New("edge source and target cannot be empty")
	ErrEdgeExists      = errors.New("edge already exists")
	ErrEdgeNotFound    = errors.New("edge not found")
	ErrUnsupportedFile = errors.New("unsupported workflow file format")
)

// CycleError reports nodes that never reached in-degree zero while ordering
// the graph. The order computed alongside it is still valid for the
// remaining nodes.
type CycleError struct {
	// Unresolved lists the node ids involved in or behind a cycle, in the
	// order they appear in the node list.
	Unresolved []string
}

// Error implements error.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected among nodes [%s]", strings.Join(e.Unresolved, ", "))
}

// AsCycleError unwraps err into a CycleError.
func AsCycleError(err error) (*CycleError, bool) {
	var target *CycleError
	ok := errors.As(err, &target)
	return target, ok
}
