// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"context"
)

// ValueFactory produces the value for one binding point on each request.
//
// A ValueFactory is shared by all of the concurrent requests reaching its
// binding point.
type ValueFactory interface {
	// Value returns the value to pass to the handler for the given request.
	//
	// An error is a fault in handling the request. Unless it is an
	// [InputError], the framework treats it as a server-side failure.
	Value(ctx context.Context, req RequestContext) (any, error)
}

// ValueFactoryFunc is an adapter to allow the use of ordinary functions as
// a [ValueFactory].
type ValueFactoryFunc func(ctx context.Context, req RequestContext) (any, error)

// Value implements [ValueFactory].
func (f ValueFactoryFunc) Value(ctx context.Context, req RequestContext) (any, error) {
	return f(ctx, req)
}

// Provider manufactures value factories for the descriptors it recognizes.
type Provider interface {
	// ValueFactory returns [Found] with a factory for the given descriptor,
	// or [NotApplicable] if this provider cannot bind it.
	ValueFactory(desc Descriptor) Match
}

// ProviderFunc is an adapter to allow the use of ordinary functions as a
// [Provider].
type ProviderFunc func(desc Descriptor) Match

// ValueFactory implements [Provider].
func (f ProviderFunc) ValueFactory(desc Descriptor) Match {
	return f(desc)
}

// Match is the result of asking a [Provider] for a value factory: either a
// factory, or an indication that the provider does not apply.
//
// The zero value is the same as [NotApplicable].
type Match struct {
	factory ValueFactory
}

// Found returns a [Match] holding the given factory, which must not be nil.
func Found(f ValueFactory) Match {
	if f == nil {
		panic("binding.Found with nil ValueFactory")
	}
	return Match{factory: f}
}

// NotApplicable returns a [Match] indicating that a provider declined to
// bind a descriptor.
func NotApplicable() Match {
	return Match{}
}

// Factory returns the matched factory and true, or nil and false if the
// provider declined.
func (m Match) Factory() (ValueFactory, bool) {
	return m.factory, m.factory != nil
}
