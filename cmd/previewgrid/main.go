package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/previewgrid/internal/arrange"
	"github.com/1broseidon/previewgrid/internal/config"
	"github.com/1broseidon/previewgrid/internal/control"
	"github.com/1broseidon/previewgrid/internal/x11"
)

func main() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "position":
		os.Exit(runPosition(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reorder":
		os.Exit(runReorder(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: previewgrid <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Detect preview windows, place them, and serve the control API")
	fmt.Fprintln(w, "  position            One-shot: find and place whatever preview windows exist now")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show window status via a running instance")
	fmt.Fprintln(w, "  reorder             Reorder windows via a running instance, e.g. 'reorder 2,1,3,4'")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'previewgrid <command> --help' for command-specific options.")
}

// loadConfig loads from the -config override or the default location.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// applyXEnv applies config-level X server overrides before connecting.
func applyXEnv(cfg *config.Config) {
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
}

// slotsFromConfig resolves the four slot rectangles, either explicit or
// derived by splitting the configured grid region into columns.
func slotsFromConfig(cfg *config.Config) []arrange.Rect {
	if len(cfg.Displays) > 0 {
		slots := make([]arrange.Rect, 0, len(cfg.Displays))
		for _, d := range cfg.Displays {
			slots = append(slots, arrange.Rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height})
		}
		return slots
	}
	region := arrange.Rect{X: cfg.Grid.X, Y: cfg.Grid.Y, Width: cfg.Grid.Width, Height: cfg.Grid.Height}
	return arrange.SplitColumns(region, cfg.Grid.Columns)
}

// buildStack connects to X11 and wires the positioner, layout manager and
// detector from configuration.
func buildStack(cfg *config.Config, logger *slog.Logger) (*x11.Connection, *arrange.Manager, *arrange.Detector, error) {
	applyXEnv(cfg)

	conn, err := x11.NewConnection()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	pos := arrange.NewPositioner(conn, arrange.PlaceConfig{
		Borderless:     cfg.GetBorderless(),
		HideTitlebar:   cfg.GetHideTitlebar(),
		TitlebarHeight: cfg.TitlebarHeight,
		Retries:        cfg.Placement.Retries,
		Tolerance:      cfg.Placement.Tolerance,
		Backoff:        time.Duration(cfg.Placement.BackoffMS) * time.Millisecond,
	}, logger)

	manager, err := arrange.NewManager(slotsFromConfig(cfg), cfg.DefaultOrder, pos, logger)
	if err != nil {
		conn.Close()
		return nil, nil, nil, err
	}

	detector := arrange.NewDetector(conn, manager, arrange.DetectorConfig{
		Timeout:      time.Duration(cfg.Detection.TimeoutSeconds) * time.Second,
		PollInterval: time.Duration(cfg.Detection.PollIntervalMS) * time.Millisecond,
		SettleDelay:  time.Duration(cfg.Detection.SettleDelayMS) * time.Millisecond,
		Logger:       logger,
	})

	return conn, manager, detector, nil
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to config file")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: previewgrid run [--config PATH] [--verbose]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Wait for the four preview windows, place them on the configured")
		fmt.Fprintln(os.Stderr, "displays, and keep serving the HTTP control API for reordering.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	conn, manager, detector, err := buildStack(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer conn.Close()

	srv := control.NewServer(fmt.Sprintf(":%d", cfg.ControlPort), manager, logger)
	srv.Start()

	fmt.Println("previewgrid")
	fmt.Println("Waiting for preview windows to appear...")
	fmt.Println("(Start your multiplayer preview in the editor)")
	fmt.Printf("Control API on http://localhost:%d (POST /reorder, GET /status)\n", cfg.ControlPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	done := make(chan arrange.Phase, 1)
	go func() {
		done <- detector.Run(ctx)
	}()

	select {
	case phase := <-done:
		switch phase {
		case arrange.PhasePositioned:
			fmt.Printf("%s All windows positioned. Control API keeps running; Ctrl-C to quit.\n", okMark())
		case arrange.PhaseTimedOut:
			fmt.Printf("%s Detection timed out. Use 'previewgrid position' to retry, or reorder via the API once windows exist.\n", failMark())
		}
		// Keep serving reorder requests until interrupted.
		<-ctx.Done()
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("control server shutdown", "error", err)
	}
	return 0
}

func runPosition(args []string) int {
	fs := flag.NewFlagSet("position", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to config file")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: previewgrid position [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Find whatever preview windows exist right now and place them.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	conn, manager, _, err := buildStack(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer conn.Close()

	windows, err := conn.ListWindows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Window enumeration failed: %v\n", err)
		return 1
	}

	found := arrange.LocateRoles(windows)
	if len(found) == 0 {
		fmt.Println("No preview windows found.")
		fmt.Println("Make sure the game is running in multiplayer preview mode.")
		return 1
	}

	fmt.Printf("Found %d window(s):\n", len(found))
	for role, id := range found {
		fmt.Printf("  - %s (window %d)\n", role.Label(), id)
	}

	placed := manager.ApplyDetected(found)
	if placed == len(found) {
		fmt.Printf("%s Successfully positioned %d window(s)\n", okMark(), placed)
		return 0
	}
	fmt.Printf("%s Positioned %d/%d windows\n", failMark(), placed, len(found))
	return 1
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: previewgrid config <validate|print> [--config PATH]")
		return 2
	}

	sub := args[0]
	fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", failMark(), err)
		return 1
	}

	switch sub {
	case "validate":
		fmt.Printf("%s Configuration is valid\n", okMark())
		return 0
	case "print":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal config: %v\n", err)
			return 1
		}
		fmt.Print(string(out))
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", sub)
		return 2
	}
}

func okMark() string {
	return color.New(color.FgGreen).Sprint("✓")
}

func failMark() string {
	return color.New(color.FgRed).Sprint("✗")
}
