package mcp

import (
	"context"
	"fmt"
	"sync"

	"treenotes/internal/application"
	"treenotes/internal/ports"
)

// Vault owns the graph the tools read. Tool calls may arrive concurrently;
// the coordinator is only ever used under the lock.
type Vault struct {
	mu     sync.Mutex
	coord  *application.Coordinator
	store  ports.NoteStore
	cutoff int
	loaded bool
}

// NewVault wraps a coordinator whose graph is loaded on the first call
func NewVault(coord *application.Coordinator, store ports.NoteStore, cutoff int) *Vault {
	return &Vault{
		coord:  coord,
		store:  store,
		cutoff: cutoff,
	}
}

// Cutoff returns the configured top-level cutoff
func (v *Vault) Cutoff() int {
	return v.cutoff
}

// Do runs fn with exclusive access to the coordinator
func (v *Vault) Do(ctx context.Context, fn func(coord *application.Coordinator) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.loaded {
		if err := v.coord.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to load vault: %w", err)
		}
		v.loaded = true
	}
	return fn(v.coord)
}
