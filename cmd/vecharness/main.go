// Package main implements the CLI driver that runs byte vector scripts.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/715d/bytevec/internal/config"
	"github.com/715d/bytevec/internal/harness"
	"github.com/715d/bytevec/pkg/element"
	"github.com/715d/bytevec/pkg/vector"
)

// Config holds all command-line configuration options.
type Config struct {
	Scripts     []string // script files to run; "-" is stdin
	Verbose     bool     // enables debug logging
	JSON        bool     // enables JSON output format
	ConfigFile  string   // optional yaml/toml/json settings file
	MemoryLimit int64    // per-script allocation budget in bytes
	Parallel    int      // scripts run concurrently
	Profile     bool     // enables CPU and memory profiling
}

const (
	exitScriptFailed = 1
	exitError        = 2
)

var (
	// Set via ldflags during build.
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	cfg      Config
	settings = config.Default()
	stdin    io.Reader = os.Stdin
	stdout   io.Writer = os.Stdout
	stderr   io.Writer = os.Stderr
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		_ = teardown(nil, nil)
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		var cErr *codedError
		if errors.As(err, &cErr) {
			os.Exit(cErr.code)
		}
		os.Exit(exitError)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "vecharness [scripts...]",
		Short: "Run command scripts against a byte vector",
		Long: `vecharness runs scripts that drive a type-erased vector and prints the
vector's capacity followed by its elements.

A script starts with "<kind> <count>" (1 int, 2 char, 3 person) followed by
count operations:
  p v      push back        i idx v  insert at idx     e idx  erase at idx
  v v      erase by value   d        erase if          r n    resize
  c        clear            f        shrink to fit     s      sort`,
		Example: `  vecharness < script.txt             # Run a script from stdin
  vecharness a.txt b.txt              # Run scripts concurrently, print in order
  vecharness --memory-limit 64 a.txt  # Fail growth beyond 64 bytes
  vecharness --json a.txt             # JSON output`,
		Args:               cobra.ArbitraryArgs,
		RunE:               runCommand,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Version:            version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("vecharness version %s\n  commit: %s\n  built:  %s\n", version, gitCommit, buildTime))

	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Settings file (.yaml, .yml, .toml or .json)")
	rootCmd.PersistentFlags().Int64Var(&cfg.MemoryLimit, "memory-limit", config.DefaultMemoryLimit, "Per-script allocation budget in bytes")
	rootCmd.PersistentFlags().IntVar(&cfg.Parallel, "parallel", 0, "Number of scripts run concurrently")
	rootCmd.PersistentFlags().BoolVar(&cfg.Profile, "profile", false, "Enable CPU and memory profiling (writes cpu.prof and mem.prof to current directory)")

	return rootCmd
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg.Scripts = args
	if len(cfg.Scripts) == 0 {
		cfg.Scripts = []string{"-"}
	}
	if n := countStdin(cfg.Scripts); n > 1 {
		return errWithCode(fmt.Errorf("stdin (-) given %d times, at most once allowed", n), exitError)
	}

	slog.Info("running scripts", "scripts", cfg.Scripts, "parallel", settings.Parallel)
	start := time.Now()
	results := runScripts(cmd.Context(), cfg.Scripts)
	slog.Info("scripts completed", "dur", time.Since(start))

	if err := writeResults(results); err != nil {
		return errWithCode(fmt.Errorf("format results: %w", err), exitError)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errWithCode(fmt.Errorf("%d of %d scripts failed", failed, len(results)), exitScriptFailed)
	}
	return nil
}

func countStdin(scripts []string) int {
	n := 0
	for _, s := range scripts {
		if s == "-" {
			n++
		}
	}
	return n
}

// ScriptResult is the outcome of one script.
type ScriptResult struct {
	Script   string
	Output   string
	Result   *harness.Result
	Err      error
	Duration time.Duration
}

// runScripts runs every script with its own vector and allocator. Results
// keep argument order regardless of completion order.
func runScripts(ctx context.Context, scripts []string) []ScriptResult {
	results := make([]ScriptResult, len(scripts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Parallel)
	for i, name := range scripts {
		g.Go(func() error {
			results[i] = runScript(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runScript(ctx context.Context, name string) (sr ScriptResult) {
	start := time.Now()
	sr.Script = name
	defer func() { sr.Duration = time.Since(start) }()

	script, err := parseScript(name)
	if err != nil {
		sr.Err = fmt.Errorf("%s: %w", name, err)
		return sr
	}

	opts := harness.Options{}
	if script.Kind != nil {
		if hint, ok := settings.CapacityHints[script.Kind.Name]; ok {
			opts.CapacityHint = &hint
		}
	}
	budget := vector.NewBudget(settings.MemoryLimitBytes)
	opts.Allocator = budget

	var out bytes.Buffer
	sr.Result, err = harness.Run(ctx, script, &out, opts)
	sr.Output = out.String()
	if err != nil {
		sr.Err = fmt.Errorf("%s: %w", name, err)
	}
	slog.Debug("script finished", "script", name, "ok", err == nil, "budget_used", budget.Used())
	return sr
}

func parseScript(name string) (*harness.Script, error) {
	if name == "-" {
		return harness.Parse(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return harness.Parse(f)
}

func writeResults(results []ScriptResult) error {
	if cfg.JSON {
		return writeJSON(stdout, results)
	}
	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(stdout, "==> %s <==\n", r.Script)
		}
		fmt.Fprint(stdout, r.Output)
		if len(results) > 1 && len(r.Output) > 0 && r.Output[len(r.Output)-1] != '\n' {
			fmt.Fprintln(stdout)
		}
		if r.Err != nil {
			fmt.Fprintln(stderr, r.Err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, results []ScriptResult) error {
	scripts := make([]jScript, 0, len(results))
	for _, r := range results {
		js := jScript{
			Script:   r.Script,
			Output:   r.Output,
			Result:   r.Result,
			Duration: r.Duration.String(),
		}
		if r.Err != nil {
			js.Error = r.Err.Error()
		}
		scripts = append(scripts, js)
	}

	kinds := make([]string, 0, 3)
	for _, k := range element.Kinds() {
		kinds = append(kinds, fmt.Sprintf("%d=%s", k.Selector, k.Name))
	}

	data, err := json.MarshalIndent(jOutput{
		Scripts:   scripts,
		Kinds:     kinds,
		Version:   version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type jOutput struct {
	Scripts   []jScript `json:"scripts"`
	Kinds     []string  `json:"kinds"`
	Version   string    `json:"version"`
	Timestamp string    `json:"timestamp"`
}

type jScript struct {
	Script   string          `json:"script"`
	Output   string          `json:"output"`
	Result   *harness.Result `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration string          `json:"duration"`
}

var cpuProfile *os.File

func setup(cmd *cobra.Command, _ []string) error {
	settings = config.Default()
	if cfg.ConfigFile != "" {
		loaded, err := config.Load(cfg.ConfigFile)
		if err != nil {
			return errWithCode(err, exitError)
		}
		settings = loaded
	}
	if cmd != nil {
		flags := cmd.Flags()
		if flags.Changed("memory-limit") {
			settings.MemoryLimitBytes = cfg.MemoryLimit
		}
		if flags.Changed("parallel") {
			settings.Parallel = cfg.Parallel
		}
		if flags.Changed("json") && cfg.JSON {
			settings.LogFormat = "json"
		}
	}
	if err := settings.Validate(); err != nil {
		return errWithCode(fmt.Errorf("invalid settings: %w", err), exitError)
	}

	// Disable logger unless verbose flag is set.
	slog.SetDefault(slog.New(slog.DiscardHandler))
	if cfg.Verbose {
		level, _ := settings.Level()
		if level > slog.LevelDebug {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if settings.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
	}

	if !cfg.Profile {
		return nil
	}

	var err error
	cpuProfile, err = os.Create("cpu.prof")
	if err != nil {
		return fmt.Errorf("creating cpu.prof: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuProfile); err != nil {
		_ = cpuProfile.Close()
		return fmt.Errorf("starting CPU profile: %w", err)
	}
	slog.Info("cpu profiling started", "file", "cpu.prof")
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if !cfg.Profile || cpuProfile == nil {
		return nil
	}

	pprof.StopCPUProfile()
	defer cpuProfile.Close()
	cpuProfile = nil
	slog.Info("cpu profiling stopped", "file", "cpu.prof")

	memFile, err := os.Create("mem.prof")
	if err != nil {
		return fmt.Errorf("creating mem.prof: %w", err)
	}
	defer memFile.Close()
	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	slog.Info("memory profiling completed", "file", "mem.prof")
	return nil
}

func errWithCode(err error, code int) error {
	return &codedError{err: err, code: code}
}

type codedError struct {
	err  error
	code int
}

func (e *codedError) Unwrap() error { return e.err }

func (e *codedError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}
