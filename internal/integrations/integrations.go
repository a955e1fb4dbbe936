// Package integrations is the extension point for external CRM/ERP
// connectors. Connectors are registered by name; none ship enabled.
package integrations

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotConfigured is returned by connectors that are registered but not
// set up for the tenant.
var ErrNotConfigured = errors.New("integration not configured")

// ErrUnknownConnector is returned when no connector is registered under
// the requested name.
var ErrUnknownConnector = errors.New("unknown integration connector")

// Order is a purchase request forwarded to an external system.
type Order struct {
	TenantID string  `json:"tenant_id"`
	UserID   string  `json:"user_id"`
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
	Contact  string  `json:"contact"`
}

// Connector is the capability surface an external CRM/ERP integration
// provides.
type Connector interface {
	// Name identifies the connector in the registry.
	Name() string

	// Sync pushes accumulated conversational leads to the external system.
	Sync(ctx context.Context, tenantID string) error

	// CreateOrder forwards a purchase request; returns the external order ID.
	CreateOrder(ctx context.Context, order Order) (string, error)

	// CheckAvailability asks the external system for live stock of a SKU.
	CheckAvailability(ctx context.Context, tenantID, sku string) (int, error)
}

// Registry holds named connectors.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register adds (or replaces) a connector under its name.
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Name()] = c
}

// Get returns the named connector.
func (r *Registry) Get(name string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[name]
	if !ok {
		return nil, ErrUnknownConnector
	}
	return c, nil
}

// Names lists registered connector names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
