// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"net/http"
	"reflect"
	"sync"

	cleanhttp "github.com/hashicorp/go-cleanhttp"

	"github.com/opentofu/webtarget/binding"
)

// TargetType is the declared type of parameters that [Provider] binds.
var TargetType = reflect.TypeFor[*Target]()

// defaultHTTPClient is shared by every provider not given its own default
// client, so that parameters without a named configuration share one
// connection pool.
var defaultHTTPClient = sync.OnceValue(cleanhttp.DefaultPooledClient)

// Provider is a [binding.Provider] for parameters of type [*Target].
//
// Its methods are safe to call concurrently.
type Provider struct {
	config        binding.Configuration
	defaultClient *http.Client
	trace         *Trace
}

var _ binding.Provider = (*Provider)(nil)

// NewProvider returns a provider that selects named client configurations
// from the given server configuration, which is read only while binding.
//
// Use [WithDefaultHTTPClient] to specify the client used for parameters that
// have no named configuration. If none is given then a pooled client shared
// by all providers is used.
func NewProvider(cfg binding.Configuration, options ...ProviderOption) *Provider {
	ret := &Provider{
		config: cfg,
	}
	for _, opt := range options {
		opt.applyOption(ret)
	}
	if ret.defaultClient == nil {
		ret.defaultClient = defaultHTTPClient()
	}
	if ret.trace == nil {
		ret.trace = noTrace
	}
	return ret
}

// Register creates a provider with [NewProvider] and registers it in the
// given registry for [binding.KindURI] parameters.
func Register(reg *binding.Registry, cfg binding.Configuration, options ...ProviderOption) *Provider {
	p := NewProvider(cfg, options...)
	reg.Register(binding.KindURI, p)
	return p
}

// ValueFactory implements [binding.Provider].
func (p *Provider) ValueFactory(desc binding.Descriptor) binding.Match {
	f := p.NewFactory(desc)
	if f == nil {
		return binding.NotApplicable()
	}
	return binding.Found(f)
}

// NewFactory returns the factory for the given descriptor, or nil if the
// descriptor has no name or its declared type is not [TargetType].
//
// The descriptor's name is used both as the URI template and as the key
// for looking up a named client configuration.
func (p *Provider) NewFactory(desc binding.Descriptor) *Factory {
	name := desc.Name
	if name == "" {
		return nil
	}
	if desc.Type != TargetType {
		return nil
	}

	config := LookupClientConfig(name, p.config)
	client := p.defaultClient
	if config != nil {
		client = config.NewHTTPClient()
	}
	p.trace.factoryCreated(name, config != nil)
	return newFactory(name, config, client, p.trace)
}
