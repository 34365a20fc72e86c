package onesignal

import (
	"fmt"

	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

// Dispatcher resolves which credentials a call uses.
type Dispatcher struct {
	registry   *registry.Registry
	defaultApp *registry.AppConfig
	orgAPIKey  string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDefaultApp sets the fallback app used when no app key is given and no
// app is current.
func WithDefaultApp(cfg registry.AppConfig) DispatcherOption {
	return func(d *Dispatcher) {
		d.defaultApp = &cfg
	}
}

// WithOrgAPIKey sets the global organization API key.
func WithOrgAPIKey(key string) DispatcherOption {
	return func(d *Dispatcher) {
		d.orgAPIKey = key
	}
}

// NewDispatcher returns a dispatcher over reg.
func NewDispatcher(reg *registry.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{registry: reg}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the underlying app registry.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// DefaultApp returns the default app, if configured.
func (d *Dispatcher) DefaultApp() (registry.AppConfig, bool) {
	if d.defaultApp == nil {
		return registry.AppConfig{}, false
	}
	return *d.defaultApp, true
}

// HasOrgAPIKey reports whether a global organization API key is configured.
func (d *Dispatcher) HasOrgAPIKey() bool {
	return d.orgAPIKey != ""
}

// Resolve returns the app a call targets. A non-empty appKey must name a
// registered app; there is no fallback for unknown keys. Otherwise the
// current app is used, then the default app.
func (d *Dispatcher) Resolve(appKey string) (registry.AppConfig, error) {
	if appKey != "" {
		cfg, err := d.registry.Get(appKey)
		if err != nil {
			return registry.AppConfig{}, fmt.Errorf("%w: app %q is not registered", registry.ErrNoAppConfigured, appKey)
		}
		return cfg, nil
	}

	if cfg, ok := d.registry.Current(); ok {
		return cfg, nil
	}
	if cfg, ok := d.DefaultApp(); ok {
		return cfg, nil
	}

	return registry.AppConfig{}, fmt.Errorf("%w: pass app_key, select an app with switch_app, or set ONESIGNAL_APP_ID and ONESIGNAL_API_KEY",
		registry.ErrNoAppConfigured)
}

// ResolveOrgKey returns the organization API key for an org-scoped call.
// The resolved app's own key wins over the global one. An unknown explicit
// appKey is an error; having no app at all is not.
func (d *Dispatcher) ResolveOrgKey(appKey string) (string, error) {
	cfg, err := d.Resolve(appKey)
	if err != nil {
		if appKey != "" {
			return "", err
		}
		cfg = registry.AppConfig{}
	}
	return d.OrgKeyFor(cfg)
}

// OrgKeyFor returns cfg's organization API key, falling back to the global one.
func (d *Dispatcher) OrgKeyFor(cfg registry.AppConfig) (string, error) {
	if cfg.OrgAPIKey != "" {
		return cfg.OrgAPIKey, nil
	}
	if d.orgAPIKey != "" {
		return d.orgAPIKey, nil
	}
	return "", fmt.Errorf("%w: set ONESIGNAL_ORG_API_KEY or add org_api_key to the app", ErrNoOrgAPIKey)
}
