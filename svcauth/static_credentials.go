// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package svcauth

import (
	"context"
)

// StaticCredentialsSource returns a [CredentialsSource] that looks up any
// requested credentials directly in the provided map, whose keys are
// normalized with [HostKey].
//
// The caller should not modify the given map after passing it to this function.
func StaticCredentialsSource(creds map[string]HostCredentials) CredentialsSource {
	ret := make(staticCredentialsSource, len(creds))
	for host, c := range creds {
		ret[HostKey(host)] = c
	}
	return ret
}

// AnyHostCredentialsSource returns a [CredentialsSource] that returns the
// given credentials for every host.
func AnyHostCredentialsSource(creds HostCredentials) CredentialsSource {
	return anyHostCredentialsSource{creds}
}

type staticCredentialsSource map[string]HostCredentials

// ForHost implements [CredentialsSource].
func (s staticCredentialsSource) ForHost(_ context.Context, host string) (HostCredentials, error) {
	return s[HostKey(host)], nil
}

type anyHostCredentialsSource struct {
	creds HostCredentials
}

// ForHost implements [CredentialsSource].
func (s anyHostCredentialsSource) ForHost(context.Context, string) (HostCredentials, error) {
	return s.creds, nil
}
