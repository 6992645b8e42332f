// ABOUTME: The system:help provider listing registered capabilities.
// ABOUTME: Enumerates the live registry so installed plugins show up too.

package builtins

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hearthd/hearthd/internal/capability"
)

// HelpProvider lists every registered provider and its intents.
type HelpProvider struct {
	registry *capability.Registry
}

// NewHelpProvider creates the help provider over the given registry.
func NewHelpProvider(registry *capability.Registry) *HelpProvider {
	return &HelpProvider{registry: registry}
}

func (p *HelpProvider) ID() string        { return "builtin:help" }
func (p *HelpProvider) Name() string      { return "Help" }
func (p *HelpProvider) Version() string   { return "1.0.0" }
func (p *HelpProvider) Intents() []string { return []string{"system:help"} }

func (p *HelpProvider) Capabilities() capability.Capabilities {
	return capability.Capabilities{Priority: 0, BrowserCompatible: true}
}

func (p *HelpProvider) Execute(ctx context.Context, q *capability.Query) (*capability.Result, error) {
	providers := p.registry.All()

	var b strings.Builder
	b.WriteString("Here's what I can do:\n")
	for _, prov := range providers {
		intents := append([]string(nil), prov.Intents()...)
		sort.Strings(intents)
		fmt.Fprintf(&b, "- %s: %s\n", prov.Name(), strings.Join(intents, ", "))
	}
	b.WriteString("\nTry things like \"ping 192.168.1.1\", \"show the front door camera\", or \"clear\".")

	return &capability.Result{Text: b.String(), Kind: "chat"}, nil
}
