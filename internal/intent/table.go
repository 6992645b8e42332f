// ABOUTME: Declarative intent pattern table loaded from an embedded TOML file.
// ABOUTME: Maps intents to regex patterns, confidence keywords, and entity extractors.

package intent

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed patterns.toml
var patternsTOML []byte

// tableFile mirrors the TOML layout.
type tableFile struct {
	Intents []tableEntry `toml:"intents"`
}

type tableEntry struct {
	Name      string   `toml:"name"`
	Patterns  []string `toml:"patterns"`
	Keywords  []string `toml:"keywords"`
	Extractor string   `toml:"extractor"`
}

// rule is one compiled entry of the priority-ordered table.
type rule struct {
	name      string
	patterns  []*regexp.Regexp
	keywords  []string
	extractor extractorFunc
}

// extractorFunc pulls named entities out of the trimmed input.
type extractorFunc func(input string) map[string]string

// loadTable parses and compiles the embedded pattern table.
func loadTable() ([]rule, error) {
	var file tableFile
	if err := toml.Unmarshal(patternsTOML, &file); err != nil {
		return nil, fmt.Errorf("parsing intent table: %w", err)
	}

	rules := make([]rule, 0, len(file.Intents))
	for _, entry := range file.Intents {
		r := rule{
			name:      entry.Name,
			keywords:  entry.Keywords,
			extractor: extractors[entry.Extractor],
		}
		for _, pat := range entry.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q for intent %q: %w", pat, entry.Name, err)
			}
			r.patterns = append(r.patterns, re)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

var (
	ipv4Pattern = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{1,3}){3})\b`)
	macPattern  = regexp.MustCompile(`\b([0-9A-Fa-f]{2}(?:[:-][0-9A-Fa-f]{2}){5})\b`)
	urlPattern  = regexp.MustCompile(`https?://\S+`)
)

// knownLocations maps spoken location names to fixed camera/device ids.
var knownLocations = map[string]string{
	"front door":  "camera-front-door",
	"garage":      "camera-garage",
	"backyard":    "camera-backyard",
	"living room": "camera-living-room",
	"driveway":    "camera-driveway",
}

// extractors is the extractor table; the empty name means no extraction.
var extractors = map[string]extractorFunc{
	"":         nil,
	"ipv4":     extractIPv4,
	"mac":      extractMAC,
	"url":      extractURL,
	"location": extractLocation,
}

func extractIPv4(input string) map[string]string {
	m := ipv4Pattern.FindString(input)
	if m == "" {
		return nil
	}
	return map[string]string{"target": m}
}

func extractMAC(input string) map[string]string {
	m := macPattern.FindString(input)
	if m == "" {
		return nil
	}
	return map[string]string{"mac": m}
}

func extractURL(input string) map[string]string {
	m := urlPattern.FindString(input)
	if m == "" {
		return nil
	}
	return map[string]string{"url": strings.TrimRight(m, ".,;)")}
}

func extractLocation(input string) map[string]string {
	lowered := strings.ToLower(input)
	for name, deviceID := range knownLocations {
		if strings.Contains(lowered, name) {
			return map[string]string{"location": name, "device": deviceID}
		}
	}
	return nil
}
