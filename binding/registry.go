// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"errors"
	"fmt"
	"sync"
)

// NoProviderError is returned when none of the providers registered for a
// descriptor's kind accepted it.
type NoProviderError struct {
	Descriptor Descriptor
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no provider can bind %s", e.Descriptor)
}

// Registry holds the providers known to a framework, grouped by the kind of
// binding they handle. Providers of the same kind are consulted in the order
// they were registered.
type Registry struct {
	// must lock "mu" while interacting with this map
	providers map[Kind][]Provider
	mu        sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[Kind][]Provider),
	}
}

// Register adds a provider for the given kind of binding, after any that
// are already registered for it.
func (r *Registry) Register(kind Kind, p Provider) {
	r.mu.Lock()
	r.providers[kind] = append(r.providers[kind], p)
	r.mu.Unlock()
}

// Bind returns the value factory for the given descriptor, produced by the
// first provider registered for its kind that accepts it.
//
// If no provider accepts the descriptor then the result is a
// [*NoProviderError].
func (r *Registry) Bind(desc Descriptor) (ValueFactory, error) {
	r.mu.RLock()
	providers := r.providers[desc.Kind]
	r.mu.RUnlock()

	for _, p := range providers {
		if f, ok := p.ValueFactory(desc).Factory(); ok {
			return f, nil
		}
	}
	return nil, &NoProviderError{Descriptor: desc}
}

// BindAll binds each of the given descriptors in turn, returning the
// factories in the same order.
//
// All descriptors are attempted even if some fail, so that the returned
// error describes every unbindable parameter at once.
func (r *Registry) BindAll(descs []Descriptor) ([]ValueFactory, error) {
	ret := make([]ValueFactory, len(descs))
	var errs []error
	for i, desc := range descs {
		f, err := r.Bind(desc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ret[i] = f
	}
	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}
	return ret, nil
}
