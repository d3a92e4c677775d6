// ABOUTME: Entry point for the coven-vars daemon and CLI
// ABOUTME: Subcommands: serve, repl, get, set, list, audit, token, health

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/coven-vars/internal/audit"
	"github.com/2389/coven-vars/internal/auth"
	"github.com/2389/coven-vars/internal/config"
	"github.com/2389/coven-vars/internal/gateway"
	"github.com/2389/coven-vars/internal/interp"
	"github.com/2389/coven-vars/internal/model"
	"github.com/2389/coven-vars/internal/vars"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  ___ _____   _____ _ __      __   ____ _ _ __ ___
 / __/ _ \ \ / / _ \ '_ \ ____\ \ / / _' | '__/ __|
| (_| (_) \ V /  __/ | | |_____\ V / (_| | |  \__ \
 \___\___/ \_/ \___|_| |_|      \_/ \__,_|_|  |___/
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: coven-vars <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                Start the gateway daemon")
		fmt.Println("  repl                 Interactive variable shell")
		fmt.Println("  get <name>           Print one variable via the daemon")
		fmt.Println("  set <name> <value>   Set a variable via the daemon")
		fmt.Println("  list                 Print all variables via the daemon")
		fmt.Println("  audit                Show recent gateway activity")
		fmt.Println("  token                Mint a client bearer token")
		fmt.Println("  health               Check daemon health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "repl":
		err = runRepl(ctx)
	case "get":
		err = runGet(ctx, os.Args[2:])
	case "set":
		err = runSet(ctx, os.Args[2:])
	case "list":
		err = runList(ctx)
	case "audit":
		err = runAudit(ctx, os.Args[2:])
	case "token":
		err = runToken(os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when no
// file exists.
func loadConfig() (*config.Config, error) {
	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Store:  %s\n", cfg.StorePath())
	green.Print("    ▶ ")
	fmt.Printf("Socket: %s\n", cfg.Gateway.Socket)
	if cfg.Gateway.HTTPAddr != "" {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:   %s\n", cfg.Gateway.HTTPAddr)
	}
	if cfg.Auth.JWTSecret != "" {
		green.Print("    ▶ ")
		fmt.Println("Auth:   bearer tokens required")
	}
	fmt.Println()

	var auditLog *audit.Log
	if cfg.Audit.Enabled {
		auditLog, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer auditLog.Close()
	}

	logger.Info("starting coven-vars",
		"socket", cfg.Gateway.Socket,
		"store", cfg.StorePath(),
	)

	gw := gateway.New(cfg, auditLog, logger)
	return gw.Run(ctx)
}

func runRepl(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	store := vars.Open(cfg.StorePath())
	processor := interp.New(store)

	var remote *model.Client
	if cfg.Model.Enabled {
		remote = model.New(cfg.Model)
	}

	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	gray.Printf("coven-vars %s (store: %s)\n", version, store.Path())
	gray.Println(`assignments: name=value; anything else is interpolated ("/help" for commands)`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cyan.Print("vars> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/help":
			printReplHelp()
			continue
		case "/vars":
			data, err := store.JSON()
			if err != nil {
				fmt.Printf("[error] %v\n", err)
				continue
			}
			fmt.Println(string(data))
			continue
		}

		res := processor.Process(line)
		if res.Assigned {
			green.Println(res.Text)
			continue
		}

		if remote == nil {
			fmt.Println(res.Text)
			continue
		}

		// Forward the interpolated text; the model never sees the store.
		reply, err := remote.Complete(ctx, res.Text)
		if err != nil {
			fmt.Printf("[error] %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

func printReplHelp() {
	fmt.Println("Commands:")
	fmt.Println("  name=value     Assign a variable (JSON literals are typed)")
	fmt.Println("  <any text>     Interpolate variables into the text")
	fmt.Println("  /vars          Show all variables as JSON")
	fmt.Println("  /help          Show this help")
	fmt.Println("  /quit          Exit")
}

// getToken returns the bearer token from COVEN_VARS_TOKEN, if set.
func getToken() string {
	return strings.TrimSpace(os.Getenv("COVEN_VARS_TOKEN"))
}

// newDaemonClient builds a gateway client from the configuration.
func newDaemonClient(cfg *config.Config) *gateway.Client {
	opts := []gateway.ClientOption{gateway.WithTimeout(cfg.Gateway.RequestTimeout)}
	if token := getToken(); token != "" {
		opts = append(opts, gateway.WithToken(token))
	}
	return gateway.NewClient(cfg.Gateway.Socket, opts...)
}

// withSession runs fn against a fresh daemon session.
func withSession(ctx context.Context, fn func(*gateway.Client, gateway.Handle) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := newDaemonClient(cfg)
	h := client.Create(ctx, "")
	if !h.Valid() {
		return fmt.Errorf("daemon not reachable on %s (is `coven-vars serve` running?)", cfg.Gateway.Socket)
	}
	defer client.Destroy(ctx, h)

	return fn(client, h)
}

func runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: coven-vars get <name>")
	}
	return withSession(ctx, func(client *gateway.Client, h gateway.Handle) error {
		fmt.Println(client.Get(ctx, h, args[0]))
		return nil
	})
}

func runSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: coven-vars set <name> <value>")
	}
	return withSession(ctx, func(client *gateway.Client, h gateway.Handle) error {
		if !client.Set(ctx, h, args[0], args[1]) {
			return fmt.Errorf("set failed")
		}
		color.Green("ok")
		return nil
	})
}

func runList(ctx context.Context) error {
	return withSession(ctx, func(client *gateway.Client, h gateway.Handle) error {
		fmt.Println(client.List(ctx, h))
		return nil
	})
}

func runAudit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	limit := fs.Int("n", 20, "number of entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("audit log is disabled (set audit.enabled in %s)", config.Path())
	}

	log, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer log.Close()

	entries, err := log.Recent(ctx, *limit)
	if err != nil {
		return err
	}

	gray := color.New(color.FgHiBlack)
	for _, e := range entries {
		gray.Printf("%s  ", e.Timestamp.Format(time.RFC3339))
		fmt.Printf("%-16s session=%s", e.Action, shortID(e.SessionID))
		if e.Subject != "" {
			fmt.Printf(" subject=%s", e.Subject)
		}
		if e.Target != "" {
			fmt.Printf(" target=%s", e.Target)
		}
		fmt.Println()
	}
	return nil
}

// shortID trims a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "cli", "token subject")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured in %s", config.Path())
	}

	token, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)).Generate(*subject, *ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := newDaemonClient(cfg)
	if !client.Health(ctx) {
		return fmt.Errorf("unhealthy: daemon not reachable on %s", cfg.Gateway.Socket)
	}
	fmt.Println("healthy")
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

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

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

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
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
	}
}
