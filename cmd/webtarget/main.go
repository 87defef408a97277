// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Command webtarget resolves outbound target URI templates offline, the same
// way they are resolved for parameters bound while handling requests. It is
// intended for checking templates and client configuration files before
// deploying them.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
