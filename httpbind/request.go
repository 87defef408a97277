// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package httpbind

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"

	"github.com/opentofu/webtarget/binding"
)

type options struct {
	basePath       string
	trustForwarded bool
}

// Option customizes how request state is extracted.
type Option interface {
	applyOption(o *options)
}

type option func(o *options)

func (f option) applyOption(o *options) {
	f(o)
}

// WithBasePath sets the path prefix at which the application is mounted,
// which becomes the path of each request's base URI.
func WithBasePath(p string) Option {
	return option(func(o *options) {
		o.basePath = p
	})
}

// WithForwardedHeaders makes the base URI honor the X-Forwarded-Proto and
// X-Forwarded-Host headers. Use this only behind a proxy that sets them.
func WithForwardedHeaders() Option {
	return option(func(o *options) {
		o.trustForwarded = true
	})
}

func buildOptions(opts []Option) *options {
	ret := &options{}
	for _, opt := range opts {
		opt.applyOption(ret)
	}
	return ret
}

// BaseURI returns the base URI of the application handling r: the scheme
// and host the request was addressed to, and the path the application is
// mounted at, which always ends with a slash.
func BaseURI(r *http.Request, opts ...Option) *url.URL {
	return buildOptions(opts).baseURI(r)
}

func (o *options) baseURI(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if o.trustForwarded {
		if proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
			scheme = proto
		}
		if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
			host = strings.TrimSpace(strings.Split(fwdHost, ",")[0])
		}
	}

	path := "/"
	if trimmed := strings.Trim(o.basePath, "/"); trimmed != "" {
		path = "/" + trimmed + "/"
	}
	return &url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}
}

// FromGin returns the request state of the given gin request.
//
// Path parameters captured more than once under the same name keep all of
// their values, in the order gin captured them.
func FromGin(c *gin.Context, opts ...Option) binding.RequestContext {
	return buildOptions(opts).fromGin(c)
}

func (o *options) fromGin(c *gin.Context) binding.RequestContext {
	params := make(map[string][]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = append(params[p.Key], p.Value)
	}
	return &binding.Request{
		Params: params,
		Base:   o.baseURI(c.Request),
	}
}

// FromMux returns the request state of a request routed by gorilla/mux.
func FromMux(r *http.Request, opts ...Option) binding.RequestContext {
	return buildOptions(opts).fromMux(r)
}

func (o *options) fromMux(r *http.Request) binding.RequestContext {
	vars := mux.Vars(r)
	params := make(map[string][]string, len(vars))
	for k, v := range vars {
		params[k] = []string{v}
	}
	return &binding.Request{
		Params: params,
		Base:   o.baseURI(r),
	}
}
