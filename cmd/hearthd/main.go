// ABOUTME: Entry point for the hearthd assistant daemon
// ABOUTME: Wires scopes, capabilities, routing, and the event log behind a REPL

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/hearthd/hearthd/internal/alert"
	"github.com/hearthd/hearthd/internal/assistant"
	"github.com/hearthd/hearthd/internal/builtins"
	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/command"
	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/eventlog"
	"github.com/hearthd/hearthd/internal/fallback"
	"github.com/hearthd/hearthd/internal/intent"
	"github.com/hearthd/hearthd/internal/kvstore"
	"github.com/hearthd/hearthd/internal/scope"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                     _   _         _
| |__   ___  __ _ _ __| |_| |__   __| |
| '_ \ / _ \/ _' | '__| __| '_ \ / _' |
| | | |  __/ (_| | |  | |_| | | | (_| |
|_| |_|\___|\__,_|_|   \__|_| |_|\__,_|
`

// getConfigPath returns the path to the hearthd config file.
// Priority: HEARTHD_CONFIG env var > XDG_CONFIG_HOME/hearthd/hearthd.yaml > ~/.config/hearthd/hearthd.yaml
func getConfigPath() string {
	if envPath := os.Getenv("HEARTHD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "hearthd.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "hearthd", "hearthd.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hearthd <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  repl    Start an interactive session")
		fmt.Println("  init    Write a default config file")
		fmt.Println("  scopes  List configured scopes")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "repl":
		err = runRepl(ctx)
	case "init":
		err = runInit()
	case "scopes":
		err = runScopes()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file, falling back to defaults when it does
// not exist.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), configPath + " (defaults)", nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func configScopes(cfg *config.Config) []scope.Scope {
	defs := make([]scope.Scope, 0, len(cfg.Scopes.Definitions))
	for _, def := range cfg.Scopes.Definitions {
		defs = append(defs, scope.Scope{
			ID:               def.ID,
			Name:             def.Name,
			AllowedProviders: def.AllowedProviders,
			AllowInternet:    def.AllowInternet,
			AllowLAN:         def.AllowLAN,
		})
	}
	return defs
}

func runRepl(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("State:  %s\n", cfg.Persistence.Path)
	fmt.Println()

	kv, err := kvstore.NewSQLiteStore(cfg.Persistence.Path)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer kv.Close()

	scopes, err := scope.NewRegistry(scope.Config{
		KV:     kv,
		Scopes: configScopes(cfg),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("building scope registry: %w", err)
	}
	scopes.Restore(ctx)
	if cfg.Scopes.Active != "" {
		if err := scopes.SetActiveScope(cfg.Scopes.Active); err != nil {
			logger.Warn("configured active scope not found", "scope", cfg.Scopes.Active, "error", err)
		}
	}

	store := eventlog.NewStore(logger)
	conv := eventlog.NewConversation(store, logger)
	defer conv.Close()

	caps := capability.NewRegistry(logger)
	unsubEvents := caps.OnPluginEvent(func(ev capability.PluginEvent) {
		if ev.Err != nil {
			logger.Warn("plugin event", "kind", ev.Kind, "provider_id", ev.ProviderID, "error", ev.Err)
			return
		}
		logger.Debug("plugin event", "kind", ev.Kind, "provider_id", ev.ProviderID)
	})
	defer unsubEvents()

	if err := builtins.RegisterAll(caps, builtins.Deps{
		Conversation: conv,
		Logger:       logger,
	}); err != nil {
		return fmt.Errorf("registering builtins: %w", err)
	}

	detector, err := intent.NewDetector(intent.DetectorConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("building detector: %w", err)
	}
	router := intent.NewRouter(intent.RouterConfig{
		Capabilities: caps,
		Scopes:       scopes,
		Logger:       logger,
	})

	bus := command.NewBus(logger)
	bus.Use(assistant.LoggingMiddleware(logger))

	svc, err := assistant.NewService(assistant.Config{
		Bus:          bus,
		Detector:     detector,
		Router:       router,
		Fallback:     fallback.NewHandler(fallback.Config{Logger: logger}),
		Scopes:       scopes,
		Conversation: conv,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("building assistant: %w", err)
	}

	bridge := alert.NewBridge(alert.Config{
		Conversation: conv,
		DedupeWindow: cfg.Alerts.DedupeWindow,
		MaxKeys:      cfg.Alerts.MaxKeys,
		MaxPerMinute: cfg.Alerts.MaxPerMinute,
		HighScore:    cfg.Alerts.MotionHighScore,
		LowScore:     cfg.Alerts.MotionLowScore,
		Logger:       logger,
	})
	defer bridge.Dispose()

	// Settle-all startup: one broken provider must not stop the rest
	report := caps.InitializeAll(ctx)
	ready := 0
	for id, initErr := range report {
		if initErr != nil {
			logger.Error("provider failed to initialize", "provider_id", id, "error", initErr)
			continue
		}
		ready++
	}
	logger.Info("hearthd ready",
		"providers", len(report),
		"initialized", ready,
		"active_scope", scopes.ActiveScope().ID)

	replErr := repl(ctx, svc, scopes)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for id, disposeErr := range caps.DisposeAll(shutdownCtx) {
		if disposeErr != nil {
			logger.Warn("provider failed to dispose", "provider_id", id, "error", disposeErr)
		}
	}
	if err := scopes.Persist(shutdownCtx); err != nil {
		logger.Warn("failed to persist scope state", "error", err)
	}

	return replErr
}

// repl reads lines from stdin and feeds them through the assistant until EOF
// or the context is cancelled.
func repl(ctx context.Context, svc *assistant.Service, scopes *scope.Registry) error {
	prompt := color.New(color.FgGreen, color.Bold)
	answer := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		prompt.Printf("you ▸ ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				return nil
			}

			res, err := svc.Ask(ctx, input, "")
			if err != nil {
				color.Red("error: %v", err)
				continue
			}
			answer.Println(res.Text)
			if res.Prompt != nil {
				for i, a := range res.Prompt.Actions {
					gray.Printf("  %d. %s\n", i+1, a.Label)
				}
			}
		}
	}
}

func runInit() error {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content := `logging:
  level: info
  format: text

persistence:
  path: hearthd.db

alerts:
  dedupe_window: 60s
  max_per_minute: 10
  motion_high_score: 0.8
  motion_low_score: 0.5

scopes:
  active: home
  definitions: []
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Wrote %s\n", configPath)
	return nil
}

func runScopes() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	scopes, err := scope.NewRegistry(scope.Config{Scopes: configScopes(cfg)})
	if err != nil {
		return fmt.Errorf("building scope registry: %w", err)
	}

	active := scopes.ActiveScope()
	for _, s := range scopes.AllScopes() {
		marker := "  "
		if s.ID == active.ID {
			marker = color.GreenString("* ")
		}
		fmt.Printf("%s%-10s %-16s lan=%-5v internet=%-5v providers=%s\n",
			marker, s.ID, s.Name, s.AllowLAN, s.AllowInternet,
			strings.Join(s.AllowedProviders, ","))
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes. Attrs
// added under WithGroup are rendered with dot-qualified keys. A nil out
// writes to stdout.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
	out    io.Writer
}

// prefix is the dot-joined group path applied to attr keys.
func (h *colorHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs, qualified by the open group path
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + prefix + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	out := h.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprint(out, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Qualify keys at attach time so Handle can print them verbatim
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, a := range attrs {
		a.Key = h.prefix() + a.Key
		newAttrs = append(newAttrs, a)
	}
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
		out:    h.out,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
		out:    h.out,
	}
}
