// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package httpbind connects the binding protocol to HTTP routers.
//
// [FromGin] and [FromMux] adapt the request state of gin and gorilla/mux
// handlers to [binding.RequestContext]. An [Endpoint] holds the value
// factories bound once for a handler's declared parameters and produces the
// handler's arguments on each request, responding with a client or server
// error status when that fails.
package httpbind
