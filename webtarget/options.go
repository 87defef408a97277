// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"net/http"
)

type ProviderOption interface {
	applyOption(p *Provider)
}

type providerOption func(p *Provider)

func (o providerOption) applyOption(p *Provider) {
	o(p)
}

// WithDefaultHTTPClient sets the client used by targets of parameters that
// have no named client configuration.
func WithDefaultHTTPClient(client *http.Client) ProviderOption {
	return providerOption(func(p *Provider) {
		p.defaultClient = client
	})
}

// WithTrace sets the trace notified of bind-time events, and of request-time
// events for requests whose context carries no trace of its own.
func WithTrace(trace *Trace) ProviderOption {
	return providerOption(func(p *Provider) {
		p.trace = trace
	})
}
