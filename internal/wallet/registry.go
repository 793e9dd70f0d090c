package wallet

import (
	"context"
	"sync"
)

// Registry owns the single provider connection. The first Provider call
// dials; later calls reuse the live connection. A failed dial is not
// cached: the connection is only re-attempted when the caller invokes
// Provider again, never automatically.
type Registry struct {
	rpcURL string

	mu   sync.Mutex
	conn *Connection
}

func NewRegistry(rpcURL string) *Registry {
	return &Registry{rpcURL: rpcURL}
}

// Provider returns the shared connection, dialing lazily on first use.
func (r *Registry) Provider(ctx context.Context) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return r.conn, nil
	}

	conn, err := Dial(ctx, r.rpcURL)
	if err != nil {
		return nil, err
	}
	r.conn = conn
	return conn, nil
}

// Close tears down the connection if one was established.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}
