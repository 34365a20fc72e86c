package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Snapshot is the persisted form of a registry.
type Snapshot struct {
	Apps    []AppConfig
	Current string
}

// Store persists registry snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Registry holds named app configurations and the current-app pointer.
// It is safe for concurrent use: reads share a lock, writes are serialized.
//
// Apps added through Seed are not persisted until they are updated at
// runtime, so the environment stays their source of truth.
type Registry struct {
	mu      sync.RWMutex
	apps    map[string]AppConfig
	seeded  map[string]bool
	current string
	store   Store

	// storedCurrent is a persisted current key that may name a seeded app.
	storedCurrent string
}

// New creates an empty in-memory registry.
func New() *Registry {
	return &Registry{
		apps:   make(map[string]AppConfig),
		seeded: make(map[string]bool),
	}
}

// NewWithStore creates a registry backed by store and loads its contents.
// A current key in the snapshot that does not reference a loaded app is
// dropped unless a later Seed provides that app.
func NewWithStore(store Store) (*Registry, error) {
	r := New()
	r.store = store

	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app registry: %w", err)
	}

	for _, cfg := range snap.Apps {
		if err := validateConfig(cfg); err != nil {
			return nil, &KeyError{Op: "load", Key: cfg.Key, Err: err}
		}
		if _, exists := r.apps[cfg.Key]; exists {
			return nil, &KeyError{Op: "load", Key: cfg.Key, Err: ErrDuplicateKey}
		}
		r.apps[cfg.Key] = cfg
	}
	if _, ok := r.apps[snap.Current]; ok {
		r.current = snap.Current
	} else {
		r.storedCurrent = snap.Current
	}

	return r, nil
}

// Add registers a new app configuration. It never changes the current app.
func (r *Registry) Add(cfg AppConfig) error {
	cfg.Key = strings.TrimSpace(cfg.Key)
	if err := validateConfig(cfg); err != nil {
		return &KeyError{Op: "add", Key: cfg.Key, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.apps[cfg.Key]; exists {
		return &KeyError{Op: "add", Key: cfg.Key, Err: ErrDuplicateKey}
	}
	r.apps[cfg.Key] = cfg

	return r.persistLocked()
}

// Update applies a partial update to an existing app and returns the names
// of the fields that were changed.
func (r *Registry) Update(key string, update AppUpdate) ([]string, error) {
	if update.IsEmpty() {
		return nil, &KeyError{Op: "update", Key: key, Err: fmt.Errorf("%w: no fields to update", ErrInvalidConfig)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.apps[key]
	if !ok {
		return nil, &KeyError{Op: "update", Key: key, Err: ErrNotFound}
	}

	var changed []string
	if update.AppID != nil {
		cfg.AppID = *update.AppID
		changed = append(changed, "app_id")
	}
	if update.APIKey != nil {
		cfg.APIKey = *update.APIKey
		changed = append(changed, "api_key")
	}
	if update.OrgAPIKey != nil {
		cfg.OrgAPIKey = *update.OrgAPIKey
		changed = append(changed, "org_api_key")
	}
	if update.Name != nil {
		cfg.Name = *update.Name
		changed = append(changed, "name")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, &KeyError{Op: "update", Key: key, Err: err}
	}
	r.apps[key] = cfg
	delete(r.seeded, key)

	return changed, r.persistLocked()
}

// Remove deletes an app. When the removed app was current, the current
// pointer is cleared and wasCurrent is true.
func (r *Registry) Remove(key string) (wasCurrent bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[key]; !ok {
		return false, &KeyError{Op: "remove", Key: key, Err: ErrNotFound}
	}
	delete(r.apps, key)
	delete(r.seeded, key)

	if r.current == key {
		r.current = ""
		wasCurrent = true
	}

	return wasCurrent, r.persistLocked()
}

// List returns every app, sorted by key, with secrets redacted.
func (r *Registry) List() []AppView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]AppView, 0, len(r.apps))
	for key, cfg := range r.apps {
		views = append(views, cfg.View(key == r.current))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Key < views[j].Key
	})
	return views
}

// Get returns a copy of the configuration stored under key.
func (r *Registry) Get(key string) (AppConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.apps[key]
	if !ok {
		return AppConfig{}, &KeyError{Op: "get", Key: key, Err: ErrNotFound}
	}
	return cfg, nil
}

// Switch makes key the current app. On failure the current app is unchanged.
func (r *Registry) Switch(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[key]; !ok {
		return &KeyError{Op: "switch", Key: key, Err: ErrNotFound}
	}
	r.current = key

	return r.persistLocked()
}

// Current returns the current app configuration, if one is set.
func (r *Registry) Current() (AppConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == "" {
		return AppConfig{}, false
	}
	cfg, ok := r.apps[r.current]
	return cfg, ok
}

// CurrentKey returns the key of the current app or "" when none is set.
func (r *Registry) CurrentKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Keys returns all app keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.apps))
	for key := range r.apps {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered apps.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// Seed adds configurations whose keys are not yet registered and returns how
// many were added. Existing entries win over seeded ones. If no app is current
// afterwards, a stored current key naming a seeded app is restored, otherwise
// the first seeded key in sorted order becomes current.
//
// Seed never writes to the store.
func (r *Registry) Seed(cfgs []AppConfig) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	var seeded []string
	for _, cfg := range cfgs {
		if err := validateConfig(cfg); err != nil {
			return added, &KeyError{Op: "seed", Key: cfg.Key, Err: err}
		}
		if _, exists := r.apps[cfg.Key]; exists {
			continue
		}
		r.apps[cfg.Key] = cfg
		r.seeded[cfg.Key] = true
		seeded = append(seeded, cfg.Key)
		added++
	}

	if r.current == "" && len(seeded) > 0 {
		if r.seeded[r.storedCurrent] {
			r.current = r.storedCurrent
		} else {
			sort.Strings(seeded)
			r.current = seeded[0]
		}
	}
	return added, nil
}

// snapshotLocked must be called with r.mu held. Seeded apps are left out.
func (r *Registry) snapshotLocked() Snapshot {
	snap := Snapshot{
		Apps:    make([]AppConfig, 0, len(r.apps)),
		Current: r.current,
	}
	for key, cfg := range r.apps {
		if r.seeded[key] {
			continue
		}
		snap.Apps = append(snap.Apps, cfg)
	}
	sort.Slice(snap.Apps, func(i, j int) bool {
		return snap.Apps[i].Key < snap.Apps[j].Key
	})
	return snap
}

// persistLocked writes the registry to its store, if any. The in-memory
// change has already been applied when this fails.
func (r *Registry) persistLocked() error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(r.snapshotLocked()); err != nil {
		return fmt.Errorf("app registry changed but could not be saved: %w", err)
	}
	return nil
}

func validateConfig(cfg AppConfig) error {
	switch {
	case cfg.Key == "":
		return fmt.Errorf("%w: key is required", ErrInvalidConfig)
	case !keyPattern.MatchString(cfg.Key):
		return fmt.Errorf("%w: key %q may only contain letters, digits, '.', '_' and '-'", ErrInvalidConfig, cfg.Key)
	case strings.TrimSpace(cfg.AppID) == "":
		return fmt.Errorf("%w: app_id is required", ErrInvalidConfig)
	case strings.TrimSpace(cfg.APIKey) == "":
		return fmt.Errorf("%w: api_key is required", ErrInvalidConfig)
	}
	return nil
}
