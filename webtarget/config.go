// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"fmt"
	"net/http"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/oauth2"

	"github.com/opentofu/webtarget/binding"
	"github.com/opentofu/webtarget/svcauth"
)

// ConfigurationProperty is the server configuration property holding the
// named client configurations, keyed by the declared parameter name.
//
// The value may be a map[string]*ClientConfig, a map[string]ClientConfig,
// a map[string]any whose elements are either of those, or a [cty.Value] of
// map or object type whose elements can be decoded by [DecodeClientConfig].
// Any other value is ignored.
const ConfigurationProperty = "webtarget.configuration"

// ClientConfig describes the outbound HTTP client used by the targets bound
// to one parameter.
//
// A ClientConfig must not be modified once a provider has been created with
// a configuration that refers to it.
type ClientConfig struct {
	// Timeout limits the time taken by each request, including reading the
	// response body. Zero means no limit.
	Timeout time.Duration

	// MaxRedirects is the number of redirects followed before giving up. Zero
	// selects the net/http default and a negative value disables following
	// redirects altogether.
	MaxRedirects int

	// Headers are added to every request made through a target.
	Headers http.Header

	// Credentials, if set, is consulted for each request and any credentials
	// it returns for the target host are applied to the request.
	Credentials svcauth.CredentialsSource

	// TokenSource, if set, authenticates every request with an OAuth 2.0
	// access token.
	TokenSource oauth2.TokenSource
}

// NewHTTPClient returns a new HTTP client with its own connection pool,
// configured as described by the receiver.
func (c *ClientConfig) NewHTTPClient() *http.Client {
	var transport http.RoundTripper = cleanhttp.DefaultPooledTransport()
	if c.TokenSource != nil {
		transport = &oauth2.Transport{
			Source: c.TokenSource,
			Base:   transport,
		}
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   c.Timeout,
	}
	switch maxRedirects := c.MaxRedirects; {
	case maxRedirects < 0:
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case maxRedirects > 0:
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}
	return client
}

// LookupClientConfig returns the client configuration named in the server
// configuration for a parameter with the given name, or nil if there is
// none.
//
// A missing or malformed [ConfigurationProperty] is treated the same as one
// with no entry for the name. This never fails, so that a mistake in the
// override settings cannot prevent parameters from being bound.
func LookupClientConfig(name string, cfg binding.Configuration) *ClientConfig {
	if cfg == nil {
		return nil
	}
	raw, ok := cfg.Property(ConfigurationProperty)
	if !ok {
		return nil
	}
	switch m := raw.(type) {
	case map[string]*ClientConfig:
		return m[name]
	case map[string]ClientConfig:
		if c, ok := m[name]; ok {
			return &c
		}
	case map[string]any:
		return asClientConfig(m[name])
	case cty.Value:
		return lookupCty(m, name)
	}
	return nil
}

func asClientConfig(v any) *ClientConfig {
	switch c := v.(type) {
	case *ClientConfig:
		return c
	case ClientConfig:
		return &c
	case cty.Value:
		ret, err := DecodeClientConfig(c)
		if err != nil {
			return nil
		}
		return ret
	}
	return nil
}

func lookupCty(v cty.Value, name string) *ClientConfig {
	if v.IsMarked() || !v.IsKnown() || v.IsNull() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(name) {
			return nil
		}
		return asClientConfig(v.GetAttr(name))
	case ty.IsMapType():
		key := cty.StringVal(name)
		if has := v.HasIndex(key); !has.IsKnown() || has.False() {
			return nil
		}
		return asClientConfig(v.Index(key))
	}
	return nil
}
