package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// BitDepth is the per-sample bit depth of a source clip
type BitDepth int

// Supported source bit depths
const (
	Bits8  BitDepth = 8
	Bits10 BitDepth = 10
)

// BitDepths is the full ordered set selected by "all"
var BitDepths = []BitDepth{Bits8, Bits10}

// BitsAll selects every entry of BitDepths
const BitsAll = "all"

// Source media, relative to the test files directory
const (
	DefaultTestFilesDir = "test_files"
	Source8Bit          = "flower_8bit.mkv"
	Source10Bit         = "flower_10bit.mkv"
)

// SourceFiles maps each bit depth to its source clip filename
var SourceFiles = map[BitDepth]string{
	Bits8:  Source8Bit,
	Bits10: Source10Bit,
}

// External tools
const (
	HyperfineBinary = "hyperfine"
	VSPipeBinary    = "vspipe"
)

// Benchmark defaults
const (
	DefaultWarmup = 1 // Warmup runs before hyperfine starts timing
	DefaultRuns   = 0 // 0 leaves the run count to hyperfine

	InterruptGrace = 5 * time.Second // hyperfine's time to stop vspipe after SIGINT
)

// Implementations under comparison. Output index 0 is always the reference.
const (
	ReferenceLanguage = "C"
	ReferenceModule   = "mv"
	RewriteLanguage   = "Rust"
	RewriteModule     = "zoomv"
)

// Generated scripts
const (
	ScriptSuffix     = ".vpy"
	ScriptPattern    = "vsbench-*" + ScriptSuffix
	ScratchDirPrefix = "vsbench-"
)

func (b BitDepth) String() string {
	return fmt.Sprintf("%d-bit", int(b))
}

// ParseBitDepths expands a --bits selection ("8", "10" or "all") into the
// ordered list of bit depths it names.
func ParseBitDepths(selection string) ([]BitDepth, error) {
	if selection == BitsAll {
		out := make([]BitDepth, len(BitDepths))
		copy(out, BitDepths)
		return out, nil
	}

	n, err := strconv.Atoi(selection)
	if err != nil {
		return nil, fmt.Errorf("invalid bit depth %q", selection)
	}
	for _, b := range BitDepths {
		if int(b) == n && strconv.Itoa(n) == selection {
			return []BitDepth{b}, nil
		}
	}
	return nil, fmt.Errorf("unsupported bit depth %q", selection)
}

// BitDepthChoices lists the accepted --bits values in display order
func BitDepthChoices() []string {
	choices := make([]string, 0, len(BitDepths)+1)
	for _, b := range BitDepths {
		choices = append(choices, strconv.Itoa(int(b)))
	}
	return append(choices, BitsAll)
}

// SourcePath returns the absolute path of the source clip for a bit depth.
// dir defaults to DefaultTestFilesDir and is resolved against the working
// directory when relative. Existence is not checked here.
func SourcePath(dir string, bits BitDepth) (string, error) {
	name, ok := SourceFiles[bits]
	if !ok {
		return "", fmt.Errorf("no source file for %s", bits)
	}
	if dir == "" {
		dir = DefaultTestFilesDir
	}
	return filepath.Abs(filepath.Join(dir, name))
}
