// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package webtarget binds request handler parameters to outbound HTTP client
// targets.
//
// A parameter declared with [binding.KindURI] and type [*Target] is bound by
// [Provider]. Its declared name is a URI template, such as "/items/{id}" or
// "https://inventory.example.com/items/{id}", whose variables are filled
// from the path parameters of each incoming request. Relative templates are
// resolved against the base URI of the request.
//
// The declared name also selects a named [ClientConfig] from the server
// configuration property [ConfigurationProperty]. Parameters with no entry
// there use the provider's default HTTP client.
//
// Faults while building a target, such as a template variable with no value
// in the request, are returned as [*ResolveError]. The template is authored
// by server code, so these are server faults rather than bad client input.
package webtarget
