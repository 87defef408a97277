// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package binding implements the protocol a request-processing framework
// uses to turn the declared parameters of a request handler into values for
// each incoming request.
//
// Binding happens in two phases. At bind time, once per declared parameter,
// the framework asks the [Provider] values registered in a [Registry] for the
// parameter's [Kind] to produce a [ValueFactory] for its [Descriptor]. A
// provider either returns [Found] with a factory or declines with
// [NotApplicable], in which case the next provider is tried. At request time
// the framework calls each bound factory with the [RequestContext] of the
// request being handled.
//
// Factories are built once and then shared by every request that reaches
// their binding point, so implementations must not change their own state
// after construction.
package binding
