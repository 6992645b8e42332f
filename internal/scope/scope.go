// ABOUTME: Scope and provider manifest types plus the built-in scope set.
// ABOUTME: A scope is a coarse allow-list, not an RBAC policy.

package scope

import "time"

// Wildcard in a scope's allow-list admits every provider.
const Wildcard = "*"

// Scope is a named access-control domain. The struct is treated as immutable
// after registration; dynamic providers are tracked by the registry.
type Scope struct {
	ID               string
	Name             string
	AllowedProviders []string
	AllowInternet    bool
	AllowLAN         bool
}

// allowsStatic reports whether the static allow-list admits the provider id.
func (s *Scope) allowsStatic(providerID string) bool {
	for _, id := range s.AllowedProviders {
		if id == Wildcard || id == providerID {
			return true
		}
	}
	return false
}

// Manifest describes a dynamically installed provider. Created on install,
// removed on uninstall.
type Manifest struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	ModuleURL   string    `json:"module_url,omitempty"`
	InstalledAt time.Time `json:"installed_at"`
	Scope       string    `json:"scope"`
}

// DefaultScopeID is the scope activated when nothing else is configured.
const DefaultScopeID = "home"

// builtinScopes returns the scope set every registry starts with.
func builtinScopes() []Scope {
	return []Scope{
		{
			ID:               "home",
			Name:             "Home",
			AllowedProviders: []string{Wildcard},
			AllowInternet:    true,
			AllowLAN:         true,
		},
		{
			ID:               "private",
			Name:             "Private (LAN only)",
			AllowedProviders: []string{Wildcard},
			AllowInternet:    false,
			AllowLAN:         true,
		},
		{
			ID:   "sandbox",
			Name: "Sandbox",
			AllowedProviders: []string{
				"builtin:chat",
				"builtin:help",
				"builtin:clear",
			},
			AllowInternet: false,
			AllowLAN:      false,
		},
	}
}
