package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/vsbench/internal/bench"
	"github.com/linuxmatters/vsbench/internal/cli"
	"github.com/linuxmatters/vsbench/internal/config"
	"github.com/linuxmatters/vsbench/internal/hyperfine"
	"github.com/linuxmatters/vsbench/internal/matrix"
	"github.com/tebeka/atexit"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

type CLI struct {
	Filter    string `arg:"" name:"filter" help:"Filter to benchmark" optional:""`
	Test      string `help:"Run a single named parameter set (default: all)" placeholder:"NAME"`
	Bits      string `help:"Bit depth to test" default:"${bits}"`
	Warmup    int    `help:"Warmup runs before timing each command" default:"${warmup}"`
	Runs      int    `help:"Timed runs per command, 0 lets hyperfine decide" default:"${runs}"`
	Matrix    string `help:"YAML file with extra parameter sets" placeholder:"FILE"`
	TestFiles string `help:"Directory holding the source clips" default:"${testfiles}" placeholder:"DIR"`
	List      bool   `help:"List filters and their parameter sets"`
	Verbose   bool   `help:"Log debug information to stderr"`
	Version   bool   `help:"Show version information"`
}

func main() {
	atexit.Exit(run(os.Args[1:], hyperfine.NewExecRunner(), exec.LookPath))
}

// run executes one vsbench invocation and returns the process exit code.
func run(args []string, runner hyperfine.Runner, lookPath hyperfine.LookPathFunc) int {
	defaults := matrix.Default()

	var flags CLI
	parser, err := kong.New(&flags,
		kong.Name("vsbench"),
		kong.Description("Benchmark zoomv (Rust) against mv (C) using hyperfine."),
		kong.Vars{
			"version":   version,
			"bits":      config.BitsAll,
			"warmup":    strconv.Itoa(config.DefaultWarmup),
			"runs":      strconv.Itoa(config.DefaultRuns),
			"testfiles": config.DefaultTestFilesDir,
		},
		kong.Writers(cli.Stdout, cli.Stderr),
		kong.Exit(atexit.Exit),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true}, defaults.IDs())),
	)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	if _, err := parser.Parse(args); err != nil {
		cli.PrintError(err.Error())
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			_ = parseErr.Context.PrintUsage(true)
		}
		return 1
	}

	// Handle version flag
	if flags.Version {
		cli.PrintVersion(version)
		return 0
	}

	level := slog.LevelWarn
	if flags.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cli.Stderr, &slog.HandlerOptions{Level: level}))

	registry := defaults
	if flags.Matrix != "" {
		overlay, err := matrix.LoadOverlay(flags.Matrix)
		if err != nil {
			cli.PrintError(err.Error())
			return 1
		}
		registry, err = registry.ApplyOverlay(overlay)
		if err != nil {
			cli.PrintError(err.Error())
			return 1
		}
		logger.Debug("loaded matrix overlay", "path", flags.Matrix, "filters", len(overlay.Filters))
	}

	if flags.List {
		cli.WriteMatrix(cli.Stdout, registry)
		return 0
	}

	if flags.Filter == "" {
		cli.PrintError(fmt.Sprintf("<filter> is required. Available filters: %s", strings.Join(registry.IDs(), ", ")))
		return 1
	}

	orch := &bench.Orchestrator{
		Registry: registry,
		Sources: func(bits config.BitDepth) (string, error) {
			return config.SourcePath(flags.TestFiles, bits)
		},
		Runner: runner,
		Out:    cli.Stdout,
		Warmup: flags.Warmup,
		Runs:   flags.Runs,
		Logger: logger,
	}

	plan, err := orch.Plan(bench.Selection{Filter: flags.Filter, Test: flags.Test, Bits: flags.Bits})
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	if flags.Warmup < 0 || flags.Runs < 0 {
		cli.PrintError("--warmup and --runs must not be negative")
		return 1
	}

	if err := hyperfine.Preflight(lookPath); err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	scratch, err := os.MkdirTemp("", config.ScratchDirPrefix)
	if err != nil {
		cli.PrintError(fmt.Sprintf("creating scratch directory: %v", err))
		return 1
	}
	// atexit.Exit skips deferred calls, so a forced quit relies on the handler
	cleanupID := atexit.Register(func() { removeScratch(scratch) })
	defer func() {
		_ = cleanupID.Cancel()
		removeScratch(scratch)
	}()
	orch.ScratchDir = scratch

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := watchSignals(cancel)
	defer stopSignals()

	cli.PrintBanner()
	cli.PrintInfo("Filter", plan.Filter.Title)
	cli.PrintInfo("Scenarios", strconv.Itoa(plan.Len()))

	if err := orch.Execute(ctx, plan); err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	return 0
}

func removeScratch(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		cli.PrintWarning(fmt.Sprintf("failed to remove scratch directory %s: %v", dir, err))
	}
}

// watchSignals cancels the run on the first SIGINT or SIGTERM, letting the
// current hyperfine stop cleanly. A second signal quits at once.
func watchSignals(cancel context.CancelFunc) (stop func()) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigs:
		case <-done:
			return
		}
		cli.PrintWarning("interrupted, stopping the current benchmark (interrupt again to quit now)")
		cancel()

		select {
		case <-sigs:
			atexit.Exit(1)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
