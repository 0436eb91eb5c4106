package infra_memory_localstorage

import (
	"context"
	"sync"
)

// Driver keeps every client's entries in process memory.
type Driver struct {
	mu      sync.RWMutex
	clients map[string]map[string]string
}

func New() *Driver {
	return &Driver{
		clients: make(map[string]map[string]string),
	}
}

func (d *Driver) Get(_ context.Context, clientID string, key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.clients[clientID][key]
	return v, ok, nil
}

func (d *Driver) Set(_ context.Context, clientID string, entries map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	bucket, ok := d.clients[clientID]
	if !ok {
		bucket = make(map[string]string, len(entries))
		d.clients[clientID] = bucket
	}
	for k, v := range entries {
		bucket[k] = v
	}
	return nil
}

func (d *Driver) Delete(_ context.Context, clientID string, keys ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	bucket, ok := d.clients[clientID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(bucket, k)
	}
	if len(bucket) == 0 {
		delete(d.clients, clientID)
	}
	return nil
}
