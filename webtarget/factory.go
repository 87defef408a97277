// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"context"
	"net/http"

	"github.com/opentofu/webtarget/binding"
	"github.com/opentofu/webtarget/internal/uritemplates"
)

// Factory produces a [Target] for each request reaching one bound
// parameter.
//
// A Factory never changes after it is created, so a single Factory can be
// used by any number of concurrent requests.
type Factory struct {
	template string
	parsed   *uritemplates.Template
	parseErr error

	config *ClientConfig
	client *http.Client
	trace  *Trace
}

var _ binding.ValueFactory = (*Factory)(nil)

func newFactory(template string, config *ClientConfig, client *http.Client, trace *Trace) *Factory {
	f := &Factory{
		template: template,
		config:   config,
		client:   client,
		trace:    trace,
	}
	// A template that fails to parse is reported on each request rather
	// than here, so that it surfaces as a failure of the requests that use
	// it and not of the whole server.
	f.parsed, f.parseErr = uritemplates.Parse(template)
	return f
}

// Template returns the URI template the factory expands.
func (f *Factory) Template() string {
	return f.template
}

// Config returns the named client configuration used by the factory's
// targets, or nil if they use the default client.
func (f *Factory) Config() *ClientConfig {
	return f.config
}

// Target returns the target for the given request.
func (f *Factory) Target(ctx context.Context, req binding.RequestContext) (*Target, error) {
	trace := traceFromContext(ctx, f.trace)
	t, err := f.target(req)
	if err != nil {
		err = &ResolveError{Template: f.template, Err: err}
		trace.targetFailed(ctx, f.template, err)
		return nil, err
	}
	trace.targetResolved(ctx, f.template, t.URL())
	return t, nil
}

func (f *Factory) target(req binding.RequestContext) (*Target, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	u, err := ResolveURL(f.parsed, req)
	if err != nil {
		return nil, err
	}
	return &Target{
		url:    u,
		client: f.client,
		config: f.config,
	}, nil
}

// Value implements [binding.ValueFactory], returning a [*Target].
func (f *Factory) Value(ctx context.Context, req binding.RequestContext) (any, error) {
	t, err := f.Target(ctx, req)
	if err != nil {
		return nil, err
	}
	return t, nil
}
