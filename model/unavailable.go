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
	"context"
	"time"
)

// Unavailable is a Model whose every request fails with a fixed reason. It
// stands in for a backend that could not be configured, for example when no
// API key is set, so that AI nodes report the problem instead of the
// process refusing to start.
type Unavailable struct {
	name   string
	reason string
}

// NewUnavailable creates an Unavailable model.
func NewUnavailable(name, reason string) *Unavailable {
	return &Unavailable{name: name, reason: reason}
}

// Info implements Model.
func (u *Unavailable) Info() Info {
	return Info{Name: u.name}
}

// GenerateContent implements Model.
func (u *Unavailable) GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error) {
	ch := make(chan *Response, 1)
	ch <- &Response{
		Error: &ResponseError{
			Message: u.reason,
			Type:    ErrorTypeConfigError,
		},
		Timestamp: time.Now(),
		Done:      true,
	}
	close(ch)
	return ch, nil
}
