// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"fmt"
	"net/url"
	"reflect"
)

// Kind identifies how a declared parameter is to be bound.
type Kind string

const (
	// KindURI binds a parameter to an outbound client target built from a
	// URI template.
	KindURI Kind = "uri"

	// KindPath binds a parameter to the value of a path parameter matched
	// by the router.
	KindPath Kind = "path"
)

// Descriptor is the static metadata for one declared binding point.
type Descriptor struct {
	// Name is the declared binding name. Its meaning depends on Kind.
	Name string

	// Type is the declared type of the parameter.
	Type reflect.Type

	Kind Kind
}

func (d Descriptor) String() string {
	typeName := "<nil>"
	if d.Type != nil {
		typeName = d.Type.String()
	}
	return fmt.Sprintf("%s parameter %q of type %s", d.Kind, d.Name, typeName)
}

// RequestContext is the live state of one request, as seen by value
// factories. Implementations are owned by the request-processing framework
// and must not be modified by callers.
type RequestContext interface {
	// PathParameters returns the values captured by the router for each
	// path template variable, in the order they were matched.
	PathParameters() map[string][]string

	// BaseURI returns the base URI of the application that is handling
	// the request.
	BaseURI() *url.URL
}

// Request is a [RequestContext] backed by plain values, for frameworks that
// have already extracted the request state and for tests.
type Request struct {
	Params map[string][]string
	Base   *url.URL
}

var _ RequestContext = (*Request)(nil)

// PathParameters implements [RequestContext].
func (r *Request) PathParameters() map[string][]string {
	return r.Params
}

// BaseURI implements [RequestContext].
func (r *Request) BaseURI() *url.URL {
	return r.Base
}

// Configuration is a read-only view of server configuration properties.
type Configuration interface {
	// Property returns the value of the named property and whether it
	// is set at all.
	Property(name string) (any, bool)
}

// Properties is a [Configuration] backed by a map. A nil Properties has no
// properties set.
type Properties map[string]any

var _ Configuration = Properties(nil)

// Property implements [Configuration].
func (p Properties) Property(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// NoConfiguration is a [Configuration] with no properties set.
var NoConfiguration Configuration = Properties(nil)
