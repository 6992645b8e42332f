// Package capability defines the provider contract and the registry that
// catalogs providers. Two provider shapes coexist: basic providers decide
// per input whether they can handle it, rich providers declare static
// capabilities and execute structured queries. The registry owns every
// registered instance and fans lifecycle calls out with settle-all
// semantics so one broken provider never blocks the others.
package capability
