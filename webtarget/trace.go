// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"context"
	"net/url"
)

// Trace allows a caller to be notified about potentially-interesting events
// while parameters are bound and targets are resolved, in case they want to
// generate log messages, telemetry traces, or similar.
//
// Use [WithTrace] to attach a Trace to a [Provider], which then reports
// bind-time events and is the default for request-time events. Use
// [ContextWithTrace] to derive a [context.Context] whose Trace is used
// instead for the requests that carry it.
//
// All of the function-typed fields may either be left as nil or set to
// a function with the specified signature. If nil then the call for the
// corresponding event will be skipped.
type Trace struct {
	// FactoryCreated is called at bind time when a provider has accepted a
	// parameter, reporting whether a named client configuration was found
	// for it.
	FactoryCreated func(template string, override bool)

	// TargetResolved is called after a target URL has been resolved for a
	// request.
	TargetResolved func(ctx context.Context, template string, u *url.URL)

	// TargetFailed is called when a target could not be resolved for a
	// request. The error is the same one returned to the framework.
	TargetFailed func(ctx context.Context, template string, err error)
}

func ContextWithTrace(parent context.Context, trace *Trace) context.Context {
	return context.WithValue(parent, traceKey, trace)
}

func (t *Trace) factoryCreated(template string, override bool) {
	if t.FactoryCreated == nil {
		return
	}
	t.FactoryCreated(template, override)
}

func (t *Trace) targetResolved(ctx context.Context, template string, u *url.URL) {
	if t.TargetResolved == nil {
		return
	}
	t.TargetResolved(ctx, template, u)
}

func (t *Trace) targetFailed(ctx context.Context, template string, err error) {
	if t.TargetFailed == nil {
		return
	}
	t.TargetFailed(ctx, template, err)
}

// traceFromContext returns the trace carried by ctx, or fallback if there
// is none.
func traceFromContext(ctx context.Context, fallback *Trace) *Trace {
	trace, ok := ctx.Value(traceKey).(*Trace)
	if !ok || trace == nil {
		return fallback
	}
	return trace
}

type traceKeyType string

const traceKey = traceKeyType("")

var noTrace = &Trace{}
