package bench

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/vsbench/internal/config"
	"github.com/linuxmatters/vsbench/internal/hyperfine"
	"github.com/linuxmatters/vsbench/internal/matrix"
)

type fixture struct {
	orch    *Orchestrator
	runner  *hyperfine.MockRunner
	out     *bytes.Buffer
	scratch string
	media   string
}

// newFixture wires an orchestrator to a mock runner, a private scratch
// directory and a media directory holding the given source clips.
func newFixture(t *testing.T, present ...config.BitDepth) *fixture {
	t.Helper()

	media := t.TempDir()
	for _, b := range present {
		require.NoError(t, os.WriteFile(filepath.Join(media, config.SourceFiles[b]), []byte("clip"), 0o644))
	}

	fx := &fixture{
		runner:  &hyperfine.MockRunner{},
		out:     &bytes.Buffer{},
		scratch: t.TempDir(),
		media:   media,
	}
	fx.orch = &Orchestrator{
		Registry: matrix.Default(),
		Sources: func(bits config.BitDepth) (string, error) {
			return config.SourcePath(media, bits)
		},
		Runner:     fx.runner,
		Out:        fx.out,
		ScratchDir: fx.scratch,
		Warmup:     1,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return fx
}

func (fx *fixture) scratchEntries(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(fx.scratch)
	require.NoError(t, err)
	return entries
}

// scriptPath pulls the script path out of "vspipe -o N -p <path> --"
func scriptPath(t *testing.T, args []string) string {
	t.Helper()
	require.GreaterOrEqual(t, len(args), 5)
	fields := strings.Fields(args[4])
	require.Len(t, fields, 6)
	return fields[4]
}

func TestPlanUnknownFilter(t *testing.T) {
	fx := newFixture(t, config.Bits8, config.Bits10)

	err := fx.orch.Run(context.Background(), Selection{Filter: "nonexistent", Bits: "all"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFilter)

	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, []string{"super", "analyse"}, selErr.Available)
	assert.Equal(t, "unknown filter 'nonexistent'. Available filters: super, analyse", err.Error())

	assert.Zero(t, fx.runner.CallCount())
	assert.Empty(t, fx.scratchEntries(t), "no transient file may be created")
	assert.Empty(t, fx.out.String())
}

func TestPlanUnknownTest(t *testing.T) {
	fx := newFixture(t, config.Bits8, config.Bits10)

	err := fx.orch.Run(context.Background(), Selection{Filter: "super", Test: "nonexistent", Bits: "all"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTest)
	assert.Contains(t, err.Error(), "unknown test 'nonexistent' for filter 'super'. Available tests: default, pel1, pel4")

	assert.Zero(t, fx.runner.CallCount())
	assert.Empty(t, fx.scratchEntries(t))
}

func TestPlanInvalidBitDepth(t *testing.T) {
	fx := newFixture(t, config.Bits8, config.Bits10)

	err := fx.orch.Run(context.Background(), Selection{Filter: "super", Bits: "12"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBitDepth)
	assert.Equal(t, "invalid --bits value '12'. Must be 8, 10, or all", err.Error())
	assert.Zero(t, fx.runner.CallCount())
}

// TestPlanValidationOrder checks that with several bad inputs the earliest
// check in filter, test, bits order is the one reported.
func TestPlanValidationOrder(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.orch.Plan(Selection{Filter: "nope", Test: "nope", Bits: "nope"})
	assert.ErrorIs(t, err, ErrUnknownFilter)

	_, err = fx.orch.Plan(Selection{Filter: "super", Test: "nope", Bits: "nope"})
	assert.ErrorIs(t, err, ErrUnknownTest)

	_, err = fx.orch.Plan(Selection{Filter: "super", Bits: "nope"})
	assert.ErrorIs(t, err, ErrInvalidBitDepth)

	// Source files are not part of planning
	plan, err := fx.orch.Plan(Selection{Filter: "super", Test: "pel1", Bits: "all"})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Len())
}

func TestPlanSingleTest(t *testing.T) {
	fx := newFixture(t)

	plan, err := fx.orch.Plan(Selection{Filter: "super", Test: "small_pad", Bits: "8"})
	require.NoError(t, err)
	require.Len(t, plan.Tests, 1)
	assert.Equal(t, "small_pad", plan.Tests[0].Name)
	assert.Equal(t, []config.BitDepth{config.Bits8}, plan.Bits)
	assert.Equal(t, 1, plan.Len())
}

// TestRunAllBitDepthMajorOrder runs the whole super matrix and checks the
// scenario count and that bit depth is the outer loop.
func TestRunAllBitDepthMajorOrder(t *testing.T) {
	fx := newFixture(t, config.Bits8, config.Bits10)

	var sources []string
	fx.runner.RunFunc = func(ctx context.Context, args []string) error {
		script, err := os.ReadFile(scriptPath(t, args))
		require.NoError(t, err)
		for _, b := range config.BitDepths {
			if strings.Contains(string(script), config.SourceFiles[b]) {
				sources = append(sources, config.SourceFiles[b])
			}
		}
		return nil
	}

	require.NoError(t, fx.orch.Run(context.Background(), Selection{Filter: "super", Bits: "all"}))

	f, _ := fx.orch.Registry.Filter("super")
	n := len(f.Tests)
	require.Equal(t, len(config.BitDepths)*n, fx.runner.CallCount())
	require.Len(t, sources, 2*n)
	for i, src := range sources {
		if i < n {
			assert.Equal(t, config.Source8Bit, src, "scenario %d", i)
		} else {
			assert.Equal(t, config.Source10Bit, src, "scenario %d", i)
		}
	}

	out := fx.out.String()
	first8 := strings.Index(out, "=== Super: default (8-bit) ===")
	last8 := strings.Index(out, "=== Super: large_pad (8-bit) ===")
	first10 := strings.Index(out, "=== Super: default (10-bit) ===")
	require.GreaterOrEqual(t, first8, 0)
	assert.Less(t, first8, last8)
	assert.Less(t, last8, first10)
	assert.Equal(t, 2*n, strings.Count(out, "=== Super:"), "one header per scenario")

	assert.Empty(t, fx.scratchEntries(t))
}

// TestRunInvocationContract pins the hyperfine arguments for one scenario.
func TestRunInvocationContract(t *testing.T) {
	fx := newFixture(t, config.Bits8)

	require.NoError(t, fx.orch.Run(context.Background(), Selection{Filter: "analyse", Test: "backward", Bits: "8"}))
	require.Equal(t, 1, fx.runner.CallCount())

	args := fx.runner.Calls[0]
	path := scriptPath(t, args)
	assert.Equal(t, fx.scratch, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, config.ScriptSuffix))

	assert.Equal(t, []string{
		"-w", "1",
		"-n", "C (mv.Analyse)", "vspipe -o 0 -p " + path + " --",
		"-n", "Rust (zoomv.Analyse)", "vspipe -o 1 -p " + path + " --",
	}, args)

	assert.Contains(t, fx.out.String(), "=== Analyse: backward (8-bit) ===")
}

func TestRunPassesRuns(t *testing.T) {
	fx := newFixture(t, config.Bits8)
	fx.orch.Warmup = 3
	fx.orch.Runs = 10

	require.NoError(t, fx.orch.Run(context.Background(), Selection{Filter: "super", Test: "default", Bits: "8"}))
	require.Equal(t, 1, fx.runner.CallCount())
	assert.Equal(t, []string{"-w", "3", "-r", "10"}, fx.runner.Calls[0][:4])
}

// TestRunScriptLifecycle checks the transient script exists with the
// rendered text while hyperfine runs and is gone afterwards.
func TestRunScriptLifecycle(t *testing.T) {
	fx := newFixture(t, config.Bits8)

	var seen string
	fx.runner.RunFunc = func(ctx context.Context, args []string) error {
		seen = scriptPath(t, args)
		data, err := os.ReadFile(seen)
		require.NoError(t, err)

		source, _ := config.SourcePath(fx.media, config.Bits8)
		assert.Equal(t, matrix.GenerateSuper(source, matrix.P("pel", 4)), string(data))
		return nil
	}

	require.NoError(t, fx.orch.Run(context.Background(), Selection{Filter: "super", Test: "pel4", Bits: "8"}))

	require.NotEmpty(t, seen)
	_, err := os.Stat(seen)
	assert.True(t, errors.Is(err, os.ErrNotExist), "script must be removed after the run")
}

// TestRunToolFailureStopsMatrix fails the second scenario and checks that
// nothing after it runs and the failing scenario's script is still removed.
func TestRunToolFailureStopsMatrix(t *testing.T) {
	fx := newFixture(t, config.Bits8, config.Bits10)

	boom := errors.New("exit status 1")
	var failedScript string
	fx.runner.RunFunc = func(ctx context.Context, args []string) error {
		if len(fx.runner.Calls) == 2 {
			failedScript = scriptPath(t, args)
			return boom
		}
		return nil
	}

	err := fx.orch.Run(context.Background(), Selection{Filter: "super", Bits: "all"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolFailed)
	assert.ErrorIs(t, err, boom)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "super", toolErr.Filter)
	assert.Equal(t, "pel1", toolErr.Test)
	assert.Equal(t, config.Bits8, toolErr.Bits)

	assert.Equal(t, 2, fx.runner.CallCount(), "no scenario after the failure may run")
	assert.NotContains(t, fx.out.String(), "pel4")

	_, statErr := os.Stat(failedScript)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
	assert.Empty(t, fx.scratchEntries(t))
}

func TestRunMissingSourceAborts(t *testing.T) {
	fx := newFixture(t, config.Bits8)

	err := fx.orch.Run(context.Background(), Selection{Filter: "super", Test: "default", Bits: "10"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSource)
	assert.ErrorIs(t, err, os.ErrNotExist)

	want, _ := config.SourcePath(fx.media, config.Bits10)
	assert.Equal(t, "source file not found: "+want, err.Error())
	assert.Zero(t, fx.runner.CallCount())
	assert.Empty(t, fx.out.String())
}

// TestRunMissingSourceMidSweep checks the strict abort: 8-bit scenarios run,
// then the missing 10-bit clip stops the run before any 10-bit scenario.
func TestRunMissingSourceMidSweep(t *testing.T) {
	fx := newFixture(t, config.Bits8)

	err := fx.orch.Run(context.Background(), Selection{Filter: "super", Bits: "all"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSource)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, config.Bits10, srcErr.Bits)

	f, _ := fx.orch.Registry.Filter("super")
	assert.Equal(t, len(f.Tests), fx.runner.CallCount())
	assert.NotContains(t, fx.out.String(), "10-bit")
}

func TestRunSourceResolverError(t *testing.T) {
	fx := newFixture(t)
	fx.orch.Sources = func(config.BitDepth) (string, error) { return "", errors.New("no table entry") }

	err := fx.orch.Run(context.Background(), Selection{Filter: "super", Bits: "8"})
	assert.ErrorIs(t, err, ErrMissingSource)
	assert.Zero(t, fx.runner.CallCount())
}

func TestRunCancelledContext(t *testing.T) {
	fx := newFixture(t, config.Bits8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fx.orch.Run(ctx, Selection{Filter: "super", Bits: "8"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fx.runner.CallCount())
}

func TestWithScriptRemovesOnError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")

	var path string
	err := withScript(dir, "text", func(p string) error {
		path = p
		data, readErr := os.ReadFile(p)
		require.NoError(t, readErr)
		assert.Equal(t, "text", string(data))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

// TestWithScriptToleratesEarlyRemoval makes sure a script deleted by the
// callee is not reported as a cleanup failure.
func TestWithScriptToleratesEarlyRemoval(t *testing.T) {
	err := withScript(t.TempDir(), "text", func(p string) error {
		return os.Remove(p)
	})
	assert.NoError(t, err)
}

func TestWithScriptCreateFailure(t *testing.T) {
	called := false
	err := withScript(filepath.Join(t.TempDir(), "missing"), "text", func(string) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "failed to create script file")
}

func TestOrList(t *testing.T) {
	assert.Equal(t, "", orList(nil))
	assert.Equal(t, "8", orList([]string{"8"}))
	assert.Equal(t, "8 or 10", orList([]string{"8", "10"}))
	assert.Equal(t, "8, 10, or all", orList([]string{"8", "10", "all"}))
}
