// Package scope implements named access-control domains. A scope restricts
// which capability providers may run and whether LAN or internet reachability
// is permitted. Built-in scopes are immutable once constructed; only the
// per-scope dynamic provider list changes, via install and uninstall.
package scope
