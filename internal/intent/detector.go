// ABOUTME: Two-stage intent detection: optional classifier, deterministic pattern fallback.
// ABOUTME: Classifier failures are swallowed; detection always yields an intent.

package intent

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// CatchAllIntent is assigned when nothing in the table matches.
const CatchAllIntent = "chat:ask"

// catchAllConfidence is the fixed confidence of the catch-all intent.
const catchAllConfidence = 0.5

// Confidence formula for the deterministic fallback path.
const (
	baseConfidence    = 0.6
	keywordBonus      = 0.1
	confidenceCeiling = 0.9
)

// Detection is the ephemeral result of classifying one input. It is
// recomputed per input and never persisted.
type Detection struct {
	Intent     string
	Confidence float64
	Entities   map[string]string
	SubAction  string
}

// Classifier is an optional probabilistic intent classifier. Its answer is
// trusted unless it errors or returns malformed output, in which case the
// deterministic table decides instead.
type Classifier interface {
	Classify(ctx context.Context, rawInput string) (*Detection, error)
}

// Detector performs two-stage intent detection.
type Detector struct {
	classifier Classifier
	rules      []rule
	logger     *slog.Logger
}

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	// Classifier is optional; nil means pattern matching only.
	Classifier Classifier
	Logger     *slog.Logger
}

// NewDetector compiles the embedded pattern table.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules, err := loadTable()
	if err != nil {
		return nil, err
	}
	return &Detector{
		classifier: cfg.Classifier,
		rules:      rules,
		logger:     logger.With("component", "intent"),
	}, nil
}

// Detect classifies raw input into an intent. It never fails: classifier
// errors fall through to the pattern table, and an unmatched input yields
// the catch-all chat intent.
func (d *Detector) Detect(ctx context.Context, rawInput string) Detection {
	if d.classifier != nil {
		det, err := d.classifier.Classify(ctx, rawInput)
		if err != nil {
			d.logger.Debug("classifier failed, falling back to patterns", "error", err)
		} else if wellFormed(det) {
			return *det
		} else {
			d.logger.Debug("classifier returned malformed detection, falling back to patterns")
		}
	}
	return d.detectByPattern(rawInput)
}

// wellFormed rejects classifier output the router cannot act on.
func wellFormed(det *Detection) bool {
	return det != nil && det.Intent != "" && det.Confidence >= 0 && det.Confidence <= 1
}

// detectByPattern scans the priority-ordered table; the first matching
// pattern wins.
func (d *Detector) detectByPattern(rawInput string) Detection {
	trimmed := strings.TrimSpace(rawInput)
	lowered := strings.ToLower(trimmed)

	for _, r := range d.rules {
		if !matchesAny(r.patterns, lowered) {
			continue
		}

		det := Detection{
			Intent:     r.name,
			Confidence: confidence(lowered, r.keywords),
			Entities:   map[string]string{},
		}
		if r.extractor != nil {
			if entities := r.extractor(trimmed); entities != nil {
				det.Entities = entities
			}
		}
		d.logger.Debug("intent matched",
			"intent", det.Intent,
			"confidence", det.Confidence,
			"entities", det.Entities)
		return det
	}

	return Detection{
		Intent:     CatchAllIntent,
		Confidence: catchAllConfidence,
		Entities:   map[string]string{},
	}
}

func matchesAny(patterns []*regexp.Regexp, input string) bool {
	for _, re := range patterns {
		if re.MatchString(input) {
			return true
		}
	}
	return false
}

// confidence is 0.6 for any table match, +0.1 per matched keyword, capped
// at 0.9.
func confidence(lowered string, keywords []string) float64 {
	c := baseConfidence
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			c += keywordBonus
		}
	}
	if c > confidenceCeiling {
		return confidenceCeiling
	}
	return c
}
