// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package httpbind

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opentofu/webtarget/binding"
)

// StatusForError returns the HTTP status for a failure to produce handler
// arguments: 400 Bad Request for a [binding.InputError] and 500 Internal
// Server Error for anything else.
func StatusForError(err error) int {
	var inputErr *binding.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorMessage returns the text to send to the client for err. Server
// faults are not described, since they concern the server's own
// configuration.
func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

// Endpoint holds the value factories for the declared parameters of one
// handler.
type Endpoint struct {
	factories []binding.ValueFactory
	options   *options
}

// NewEndpoint binds each of the given descriptors using the registry. It
// fails if any descriptor cannot be bound.
func NewEndpoint(reg *binding.Registry, descs []binding.Descriptor, opts ...Option) (*Endpoint, error) {
	factories, err := reg.BindAll(descs)
	if err != nil {
		return nil, err
	}
	return &Endpoint{
		factories: factories,
		options:   buildOptions(opts),
	}, nil
}

// Values returns the handler arguments for the given request, in the order
// the descriptors were given to [NewEndpoint].
func (e *Endpoint) Values(ctx context.Context, req binding.RequestContext) ([]any, error) {
	args := make([]any, len(e.factories))
	for i, f := range e.factories {
		v, err := f.Value(ctx, req)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// GinHandler returns a gin handler that calls h with the bound arguments
// for each request.
func (e *Endpoint) GinHandler(h func(c *gin.Context, args []any)) gin.HandlerFunc {
	return func(c *gin.Context) {
		args, err := e.Values(c.Request.Context(), e.options.fromGin(c))
		if err != nil {
			status := StatusForError(err)
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, gin.H{"error": errorMessage(status, err)})
			return
		}
		h(c, args)
	}
}

// MuxHandler returns an [http.Handler], for use with a gorilla/mux router,
// that calls h with the bound arguments for each request.
func (e *Endpoint) MuxHandler(h func(w http.ResponseWriter, r *http.Request, args []any)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args, err := e.Values(r.Context(), e.options.fromMux(r))
		if err != nil {
			status := StatusForError(err)
			http.Error(w, errorMessage(status, err), status)
			return
		}
		h(w, r, args)
	})
}
