// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Target is an outbound HTTP endpoint: a resolved absolute URL together
// with the client used to make requests to it.
//
// Targets are immutable. Methods that derive a new target leave the
// receiver unchanged.
type Target struct {
	url    *url.URL
	client *http.Client
	config *ClientConfig
}

// URL returns a copy of the target's URL.
func (t *Target) URL() *url.URL {
	u := *t.url
	if t.url.User != nil {
		user := *t.url.User
		u.User = &user
	}
	return &u
}

func (t *Target) String() string {
	return t.url.String()
}

// Client returns the HTTP client used for requests to the target.
func (t *Target) Client() *http.Client {
	return t.client
}

// Config returns the named client configuration the target was built
// with, or nil if it uses the default client.
func (t *Target) Config() *ClientConfig {
	return t.config
}

// Path returns a target whose path is the receiver's path followed by p.
// Each slash-separated segment of p is percent-encoded.
func (t *Target) Path(p string) *Target {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	u := t.URL()
	// The escaped path of a URL is always valid, so this cannot fail.
	_ = setEscapedPath(u, joinEscapedPath(u.EscapedPath(), strings.Join(segs, "/")))
	return t.with(u)
}

// QueryParam returns a target whose query string additionally has the
// given values for the named parameter.
func (t *Target) QueryParam(name string, values ...string) *Target {
	u := t.URL()
	q := u.Query()
	q[name] = append(q[name], values...)
	u.RawQuery = q.Encode()
	return t.with(u)
}

func (t *Target) with(u *url.URL) *Target {
	return &Target{
		url:    u,
		client: t.client,
		config: t.config,
	}
}

// NewRequest returns a request for the target with the given method and
// body, carrying the headers and credentials of the target's client
// configuration.
func (t *Target) NewRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.url.String(), body)
	if err != nil {
		return nil, err
	}
	if t.config == nil {
		return req, nil
	}
	for name, vals := range t.config.Headers {
		for _, v := range vals {
			req.Header.Add(name, v)
		}
	}
	if t.config.Credentials != nil {
		creds, err := t.config.Credentials.ForHost(ctx, t.url.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain credentials for %s: %w", t.url.Host, err)
		}
		if creds != nil {
			creds.PrepareRequest(req)
		}
	}
	return req, nil
}

// Do sends the given request using the target's client.
func (t *Target) Do(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

// Get makes a GET request to the target.
func (t *Target) Get(ctx context.Context) (*http.Response, error) {
	req, err := t.NewRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return t.Do(req)
}
