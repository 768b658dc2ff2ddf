package matrix

import (
	"strconv"
	"strings"

	"github.com/linuxmatters/vsbench/internal/config"
)

// Output indices bound by every generated script
const (
	ReferenceOutput = 0
	RewriteOutput   = 1
)

// scriptWriter assembles a VapourSynth script. Both implementations are
// always emitted in the same order: reference first, rewrite second.
type scriptWriter struct {
	sb strings.Builder
}

func newScript(sourcePath string) *scriptWriter {
	w := &scriptWriter{}
	w.line("import vapoursynth as vs")
	w.blank()
	w.line("core = vs.core")
	w.blank()
	// strconv.Quote output is a valid Python string literal for any path
	w.line("clip = core.ffms2.Source(source=" + strconv.Quote(sourcePath) + ")")
	w.blank()
	return w
}

func (w *scriptWriter) line(s string) {
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *scriptWriter) blank() {
	w.sb.WriteByte('\n')
}

// call writes "dst = src.<module>.<fn>(args)"
func (w *scriptWriter) call(dst, src, module, fn string, args Params) {
	w.line(dst + " = " + src + "." + module + "." + fn + "(" + args.String() + ")")
}

func (w *scriptWriter) outputs(reference, rewrite string) string {
	w.line(reference + ".set_output(" + strconv.Itoa(ReferenceOutput) + ")")
	w.line(rewrite + ".set_output(" + strconv.Itoa(RewriteOutput) + ")")
	return w.sb.String()
}

// GenerateSuper renders a script comparing mv.Super with zoomv.Super.
func GenerateSuper(sourcePath string, params Params) string {
	w := newScript(sourcePath)
	w.call("clip_mv", "clip", config.ReferenceModule, "Super", params)
	w.call("clip_zoom", "clip", config.RewriteModule, "Super", params)
	w.blank()
	return w.outputs("clip_mv", "clip_zoom")
}

// GenerateAnalyse renders a script comparing mv.Analyse with zoomv.Analyse.
// Each implementation analyses its own default-parameter Super clip so the
// timing covers the whole motion search pipeline of that implementation.
func GenerateAnalyse(sourcePath string, params Params) string {
	w := newScript(sourcePath)
	w.call("super_mv", "clip", config.ReferenceModule, "Super", Params{})
	w.call("super_zoom", "clip", config.RewriteModule, "Super", Params{})
	w.blank()
	w.call("vectors_mv", "super_mv", config.ReferenceModule, "Analyse", params)
	w.call("vectors_zoom", "super_zoom", config.RewriteModule, "Analyse", params)
	w.blank()
	return w.outputs("vectors_mv", "vectors_zoom")
}
