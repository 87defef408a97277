// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package svcauth provides some supporting types for representing credentials
// that a named outbound client configuration attaches to the requests made
// through its targets.
//
// Hosts are identified by the authority part of the target URL, in the form
// "host" or "host:port", compared case-insensitively.
package svcauth

import (
	"strings"
)

// HostKey returns the form of the given authority that credentials sources
// use as a lookup key.
func HostKey(authority string) string {
	return strings.ToLower(authority)
}
