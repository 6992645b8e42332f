// ABOUTME: Bridges change-detection, device-status, and motion signals into the event log.
// ABOUTME: Applies windowed dedupe, a per-minute cap, and score-based severity wording.

package alert

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode"

	"github.com/hearthd/hearthd/internal/dedupe"
	"github.com/hearthd/hearthd/internal/eventlog"
)

const alertKind = "alert"

// Defaults applied when Config leaves a field zero.
const (
	defaultDedupeWindow = 60 * time.Second
	defaultMaxKeys      = 256
	defaultMaxPerMinute = 10
	defaultHighScore    = 0.8
	defaultLowScore     = 0.5
)

// Change is one signal from a change-detection emitter.
type Change struct {
	Source string
	Title  string
	Detail string
}

// ChangeEmitter pushes change signals to a single subscriber. The returned
// function detaches that subscriber.
type ChangeEmitter interface {
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Bridge turns external signals into system messages on the conversation log.
// All entry points are safe for concurrent use.
type Bridge struct {
	mu          sync.Mutex
	conv        *eventlog.Conversation
	window      *dedupe.Window
	maxPerMin   int
	minuteStart time.Time
	minuteCount int
	highScore   float64
	lowScore    float64
	detach      func()
	disposed    bool
	logger      *slog.Logger
	now         func() time.Time
}

// Config configures a Bridge.
type Config struct {
	Conversation *eventlog.Conversation
	// DedupeWindow suppresses identical signals arriving within it.
	DedupeWindow time.Duration
	// MaxKeys bounds the dedupe key space.
	MaxKeys int
	// MaxPerMinute silently drops alerts past the cap within a minute.
	MaxPerMinute int
	// HighScore and LowScore are the motion severity thresholds.
	HighScore float64
	LowScore  float64
	Logger    *slog.Logger
}

// NewBridge creates a bridge writing to the given conversation.
func NewBridge(cfg Config) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := cfg.DedupeWindow
	if window <= 0 {
		window = defaultDedupeWindow
	}
	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	maxPerMin := cfg.MaxPerMinute
	if maxPerMin <= 0 {
		maxPerMin = defaultMaxPerMinute
	}
	high := cfg.HighScore
	if high == 0 {
		high = defaultHighScore
	}
	low := cfg.LowScore
	if low == 0 {
		low = defaultLowScore
	}
	return &Bridge{
		conv:      cfg.Conversation,
		window:    dedupe.New(window, maxKeys),
		maxPerMin: maxPerMin,
		highScore: high,
		lowScore:  low,
		logger:    logger.With("component", "alert"),
		now:       time.Now,
	}
}

// Attach subscribes the bridge to a change emitter. Re-attaching replaces the
// existing subscription rather than stacking a second one.
func (b *Bridge) Attach(em ChangeEmitter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	if b.detach != nil {
		b.detach()
	}
	b.detach = em.Subscribe(b.handleChange)
	b.logger.Debug("change emitter attached")
}

// Detach drops the change emitter subscription. No-op when not attached.
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detachLocked()
}

func (b *Bridge) detachLocked() {
	if b.detach != nil {
		b.detach()
		b.detach = nil
	}
}

func (b *Bridge) handleChange(c Change) {
	key := fmt.Sprintf("change:%s:%s", c.Source, c.Title)
	text := fmt.Sprintf("Change detected on %s: %s", c.Source, c.Title)
	meta := map[string]any{"signal": "change", "source": c.Source}
	if c.Detail != "" {
		meta["detail"] = c.Detail
	}
	b.deliver(key, text, meta)
}

// NotifyDeviceStatusChange records a device going online or offline. Repeats
// with the same (ip, status) inside the dedupe window are dropped.
func (b *Bridge) NotifyDeviceStatusChange(ip, name, status string) {
	display := name
	if display == "" {
		display = ip
	}
	key := fmt.Sprintf("device:%s:%s", ip, status)
	text := fmt.Sprintf("Device %s (%s) is now %s", display, ip, status)
	b.deliver(key, text, map[string]any{
		"signal": "device_status",
		"ip":     ip,
		"status": status,
	})
}

// NotifyMotion records a motion detection. Wording depends on the score:
// at or above the high threshold the alert is marked urgent, below the low
// threshold it is phrased as a possible detection.
func (b *Bridge) NotifyMotion(camera, label string, score float64) {
	var text string
	switch {
	case score >= b.highScore:
		text = fmt.Sprintf("Urgent: %s detected on %s camera (confidence %.2f)", label, camera, score)
	case score >= b.lowScore:
		text = fmt.Sprintf("%s detected on %s camera", capitalize(label), camera)
	default:
		text = fmt.Sprintf("Possible %s on %s camera (low confidence)", label, camera)
	}
	key := fmt.Sprintf("motion:%s:%s", camera, label)
	b.deliver(key, text, map[string]any{
		"signal": "motion",
		"camera": camera,
		"label":  label,
		"score":  score,
	})
}

// deliver applies dedupe and the per-minute cap, then appends a system
// message. Drops are silent apart from debug logs.
func (b *Bridge) deliver(key, text string, meta map[string]any) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	// Lazy minute counter; no timer goroutine needed
	now := b.now()
	if now.Sub(b.minuteStart) >= time.Minute {
		b.minuteStart = now
		b.minuteCount = 0
	}
	if b.minuteCount >= b.maxPerMin {
		b.mu.Unlock()
		b.logger.Debug("alert dropped by per-minute cap", "key", key)
		return
	}
	// The window is armed only when the alert will actually be recorded, so
	// a capped-out signal is not suppressed once the counter resets
	if b.window.Suppress(key) {
		b.mu.Unlock()
		b.logger.Debug("alert suppressed by dedupe window", "key", key)
		return
	}
	b.minuteCount++
	b.mu.Unlock()

	if _, err := b.conv.AddMessage(eventlog.RoleSystem, text, alertKind, meta); err != nil {
		b.logger.Warn("failed to record alert", "key", key, "error", err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Dispose detaches from the emitter and clears dedupe state. Safe to call
// repeatedly; signals arriving afterwards are dropped.
func (b *Bridge) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	b.detachLocked()
	b.window.Reset()
	b.disposed = true
	b.logger.Debug("alert bridge disposed")
}
