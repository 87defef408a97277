// Copyright (c) The OpenTofu Authors
// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package svcauth

import (
	"context"
	"sync"
)

// CachingCredentialsSource creates a new credentials source that wraps another
// and caches its results in memory, on a per-host basis.
//
// No means is provided for expiration of cached credentials, so this is
// suitable only for sources whose credentials do not expire, or for wrapping
// a source whose own results already refresh themselves.
func CachingCredentialsSource(source CredentialsSource) CredentialsSource {
	return &cachingCredentialsSource{
		source: source,
		cache:  map[string]HostCredentials{},
	}
}

type cachingCredentialsSource struct {
	source CredentialsSource
	cache  map[string]HostCredentials
	mu     sync.Mutex
}

// ForHost passes the given host on to the wrapped credentials source and
// caches the result to return for future requests with the same host.
//
// Both credentials and non-credentials (nil) responses are cached.
//
// No cache entry is created if the wrapped source returns an error, to allow
// the caller to retry the failing operation.
func (s *cachingCredentialsSource) ForHost(ctx context.Context, host string) (HostCredentials, error) {
	key := HostKey(host)
	s.mu.Lock()
	if cache, cached := s.cache[key]; cached {
		s.mu.Unlock()
		return cache, nil
	}
	s.mu.Unlock()

	result, err := s.source.ForHost(ctx, host)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	s.cache[key] = result
	s.mu.Unlock()
	return result, nil
}
