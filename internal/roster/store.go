package roster

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable marks a roster table that exists but cannot be read or
// written. It is never silently downgraded to an empty table.
var ErrStoreUnavailable = errors.New("roster store unavailable")

// Store is the durable whole-table interface for per-gateway rosters. Load
// returns an empty table for a gateway that has never been saved; Save
// replaces the entire table atomically with respect to concurrent loads.
type Store interface {
	Load(ctx context.Context, gatewayID string) (Table, error)
	Save(ctx context.Context, gatewayID string, table Table) error
}

// GatewayLocks serializes load-mutate-save cycles per gateway. Scans and
// merges against the same gateway must not interleave; unrelated gateways
// proceed independently.
type GatewayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGatewayLocks() *GatewayLocks {
	return &GatewayLocks{locks: map[string]*sync.Mutex{}}
}

// Acquire locks the named gateway and returns the release function. The lock
// must be held for the full duration of one load-mutate-save cycle.
func (g *GatewayLocks) Acquire(gatewayID string) func() {
	g.mu.Lock()
	lock, ok := g.locks[gatewayID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[gatewayID] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
