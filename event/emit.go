//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package event

import (
	"context"
	"errors"
	"time"
)

// EmitWithoutTimeout disables the emit timeout.
const EmitWithoutTimeout time.Duration = 0

// DefaultEmitTimeoutErr is returned when an emit times out.
var DefaultEmitTimeoutErr = NewEmitEventTimeoutError("emit event timeout.")

// EmitEventTimeoutError is returned when an event could not be delivered
// before the timeout elapsed.
type EmitEventTimeoutError struct {
	Message string
}

// NewEmitEventTimeoutError creates an EmitEventTimeoutError.
func NewEmitEventTimeoutError(msg string) *EmitEventTimeoutError {
	return &EmitEventTimeoutError{Message: msg}
}

// Error implements error.
func (e *EmitEventTimeoutError) Error() string {
	return e.Message
}

// AsEmitEventTimeoutError unwraps err into an EmitEventTimeoutError.
func AsEmitEventTimeoutError(err error) (*EmitEventTimeoutError, bool) {
	var target *EmitEventTimeoutError
	ok := errors.As(err, &target)
	return target, ok
}

// EmitEvent sends e to ch, blocking until it is received or ctx is done.
func EmitEvent(ctx context.Context, ch chan<- *Event, e *Event) error {
	return EmitEventWithTimeout(ctx, ch, e, EmitWithoutTimeout)
}

// EmitEventWithTimeout sends e to ch. A nil channel or event is a no-op.
func EmitEventWithTimeout(ctx context.Context, ch chan<- *Event,
	e *Event, timeout time.Duration) error {
	if e == nil || ch == nil {
		return nil
	}
	if timeout == EmitWithoutTimeout {
		select {
		case ch <- e:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return DefaultEmitTimeoutErr
	}
}
