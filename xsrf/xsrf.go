// Package xsrf provides the cached anti-forgery token provider used
// before credential submission.
package xsrf

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	access "github.com/fieldline/access-go"
)

// Source fetches a fresh anti-forgery token from the server.
// Implementations: httpapi/ (REST), fake/ (testing).
type Source interface {
	FetchToken(ctx context.Context) (string, error)
}

// Provider implements access.TokenProvider. Acquisition is idempotent: a
// held token is returned without network activity, and concurrent first
// acquisitions share one fetch.
type Provider struct {
	source Source

	mu    sync.RWMutex
	token string

	sf singleflight.Group
}

// compile-time check
var _ access.TokenProvider = (*Provider)(nil)

// New creates a token provider backed by the given source.
func New(source Source) *Provider {
	return &Provider{source: source}
}

// Get returns the held token, fetching one if none is held.
func (p *Provider) Get(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.token != "" {
		defer p.mu.RUnlock()
		return p.token, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.sf.Do("token", func() (interface{}, error) {
		token, err := p.source.FetchToken(ctx)
		if err != nil {
			return nil, err
		}
		p.Set(token)
		return token, nil
	})
	if err != nil {
		return "", fmt.Errorf("xsrf: token acquisition failed: %w", err)
	}
	return v.(string), nil
}

// Set stores a token, replacing any held one.
func (p *Provider) Set(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

// Clear drops the held token so the next Get fetches a fresh one.
func (p *Provider) Clear() {
	p.Set("")
}
