// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/opentofu/webtarget/binding"
	"github.com/opentofu/webtarget/internal/uritemplates"
)

// ResolveError is returned when a target cannot be built from a template
// for a particular request.
type ResolveError struct {
	Template string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve target from URI template %q: %s", e.Template, e.Err)
}

// Unwrap returns the underlying problem, which is often a
// [uritemplates.ParseError] or [uritemplates.UndefinedVariableError].
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// ResolveURL expands the given URI template using the path parameters of
// the given request and resolves the result against the request's base URI
// if it is relative.
//
// Only the first value captured for each path parameter is used. A template
// variable whose path parameter was not captured, or was captured with no
// values, is an error.
func ResolveURL(tmpl *uritemplates.Template, req binding.RequestContext) (*url.URL, error) {
	expanded, err := tmpl.ExpandEncoded(substitutions(req.PathParameters()))
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(expanded)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		base := req.BaseURI()
		if base == nil || !base.IsAbs() {
			return nil, errors.New("relative target requires an absolute base URI for the request")
		}
		u, err = appendToBase(base, u)
		if err != nil {
			return nil, err
		}
	}
	if err := toASCIIHost(u); err != nil {
		return nil, err
	}
	return u, nil
}

// substitutions returns the template values for the given path parameters.
// Parameters with no captured values have no entry at all, which is
// different from an entry with an empty value.
func substitutions(params map[string][]string) map[string]string {
	ret := make(map[string]string, len(params))
	for name, vals := range params {
		if len(vals) == 0 {
			continue
		}
		ret[name] = vals[0]
	}
	return ret
}

// appendToBase appends the path of a relative URL to the path of base,
// keeping the base scheme and authority. The relative URL's query and
// fragment replace any in the base.
//
// A scheme-relative URL such as "//example.com/foo" keeps its own authority
// and path and takes only its scheme from base.
func appendToBase(base, rel *url.URL) (*url.URL, error) {
	ret := &url.URL{
		Scheme:      base.Scheme,
		User:        base.User,
		Host:        base.Host,
		RawQuery:    rel.RawQuery,
		ForceQuery:  rel.ForceQuery,
		Fragment:    rel.Fragment,
		RawFragment: rel.RawFragment,
	}
	escapedPath := joinEscapedPath(base.EscapedPath(), rel.EscapedPath())
	if rel.Host != "" {
		ret.User = rel.User
		ret.Host = rel.Host
		escapedPath = rel.EscapedPath()
	}
	if err := setEscapedPath(ret, escapedPath); err != nil {
		return nil, err
	}
	return ret, nil
}

// joinEscapedPath joins two already-escaped paths with exactly one slash
// between them.
func joinEscapedPath(base, rel string) string {
	if rel == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}

func setEscapedPath(u *url.URL, escaped string) error {
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return err
	}
	u.Path = unescaped
	u.RawPath = escaped
	return nil
}

// toASCIIHost rewrites an internationalized host name in u to its ASCII
// form, so that the result can be used directly for DNS lookups and in the
// Host header.
func toASCIIHost(u *url.URL) error {
	host := u.Hostname()
	if isASCII(host) {
		return nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return fmt.Errorf("invalid host name %q: %w", host, err)
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(ascii, port)
	} else {
		u.Host = ascii
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
