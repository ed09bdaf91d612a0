// Package prefs stores small UI preferences behind a key/value interface.
package prefs

import (
	"context"
	"fmt"
	"sync"
)

// Store is a string key/value store. A missing key is reported with ok=false,
// never with an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStore is a Store held in memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Keys remembered between visits
const (
	KeyActiveTab          = "activeNetworkTab"
	KeySelectedDepartment = "selectedDepartmentId"
)

// Tab is a top-level navigation tab of the dashboard
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabDesign    Tab = "design"
	TabConfigure Tab = "configure"
	TabHosts     Tab = "hosts"
	TabTest      Tab = "test"
	TabMonitor   Tab = "monitor"
)

// DefaultTab is used when no tab has been remembered
const DefaultTab = TabDashboard

// Valid reports whether t is a known tab
func (t Tab) Valid() bool {
	switch t {
	case TabDashboard, TabDesign, TabConfigure, TabHosts, TabTest, TabMonitor:
		return true
	}
	return false
}

// Preferences gives typed access to the remembered UI state
type Preferences struct {
	store Store
}

// New wraps a Store
func New(store Store) *Preferences {
	return &Preferences{store: store}
}

// Store returns the underlying key/value store
func (p *Preferences) Store() Store {
	return p.store
}

// ActiveTab returns the remembered tab, or DefaultTab when absent or unknown
func (p *Preferences) ActiveTab(ctx context.Context) (Tab, error) {
	v, ok, err := p.store.Get(ctx, KeyActiveTab)
	if err != nil {
		return DefaultTab, fmt.Errorf("read active tab: %w", err)
	}
	if !ok || !Tab(v).Valid() {
		return DefaultTab, nil
	}
	return Tab(v), nil
}

// SetActiveTab remembers the active tab
func (p *Preferences) SetActiveTab(ctx context.Context, t Tab) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tab %q", t)
	}
	return p.store.Set(ctx, KeyActiveTab, string(t))
}

// SelectedDepartment returns the remembered department id, "" when absent
func (p *Preferences) SelectedDepartment(ctx context.Context) (string, error) {
	v, _, err := p.store.Get(ctx, KeySelectedDepartment)
	if err != nil {
		return "", fmt.Errorf("read selected department: %w", err)
	}
	return v, nil
}

// SetSelectedDepartment remembers the selected department; "" forgets it
func (p *Preferences) SetSelectedDepartment(ctx context.Context, id string) error {
	if id == "" {
		return p.store.Remove(ctx, KeySelectedDepartment)
	}
	return p.store.Set(ctx, KeySelectedDepartment, id)
}
