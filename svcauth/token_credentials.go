// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package svcauth

import (
	"net/http"
)

// HostCredentialsToken is a HostCredentials implementation that represents a
// single "bearer token", to be sent to the server via an Authorization header
// with the auth type set to "Bearer".
type HostCredentialsToken string

var _ HostCredentials = HostCredentialsToken("")

// PrepareRequest alters the given HTTP request by setting its Authorization
// header to the string "Bearer " followed by the encapsulated authentication
// token.
func (tc HostCredentialsToken) PrepareRequest(req *http.Request) {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Authorization", "Bearer "+string(tc))
}

// Token returns the authentication token.
func (tc HostCredentialsToken) Token() string {
	return string(tc)
}

// HostCredentialsBasic is a HostCredentials implementation that sends a
// username and password using HTTP Basic authentication.
type HostCredentialsBasic struct {
	Username string
	Password string
}

var _ HostCredentials = HostCredentialsBasic{}

// PrepareRequest sets the request's Authorization header for HTTP Basic
// authentication.
func (bc HostCredentialsBasic) PrepareRequest(req *http.Request) {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.SetBasicAuth(bc.Username, bc.Password)
}
