package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Factory builds a Provider bound to the given model name. An empty model
// means the factory's configured default.
type Factory func(ctx context.Context, model string) (Provider, error)

// Registry maps provider names to factories. Lookups are case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	r.factories[normalize(name)] = f
	r.mu.Unlock()
}

// Get resolves name to a factory and builds a provider for model.
func (r *Registry) Get(ctx context.Context, name, model string) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered under %q", name)
	}
	return f(ctx, model)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
