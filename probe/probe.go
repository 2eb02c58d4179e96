// Package probe interrogates Python binaries for the facts a catalog entry
// needs: the interpreter version and the build architecture.
//
// Probing is best effort. A binary that cannot be launched, crashes, or
// prints something unusable yields unknown Fields, never an error; the
// caller decides what an unknown fact means.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	slogcontext "github.com/veqryn/slog-context"
)

// Inline scripts executed by the binary under probe. The architecture script
// mirrors the detection the host tool performs; the version script prints
// the major.minor pair only.
const (
	architectureScript = `import platform;print('x64' if '64bit' in platform.architecture() else 'x86')`
	versionScript      = `import sys;print('.'.join(str(s) for s in sys.version_info[:2]))`
)

// Field is a single probed fact. Known reports whether Value was actually
// obtained from the binary; an unknown Field leaves the corresponding
// descriptor field untouched.
type Field struct {
	Value string
	Known bool
}

// Facts bundles the results of probing one binary.
type Facts struct {
	Version      Field
	Architecture Field
}

// Prober interrogates a Python binary. Implementations degrade to unknown
// Fields instead of returning errors.
type Prober interface {
	Version(ctx context.Context, exe string) Field
	Architecture(ctx context.Context, exe string) Field
}

// Gather probes both facts for exe.
func Gather(ctx context.Context, p Prober, exe string) Facts {
	return Facts{
		Version:      p.Version(ctx, exe),
		Architecture: p.Architecture(ctx, exe),
	}
}

// ExecProber probes by launching the binary with short inline scripts. Each
// probe makes a single attempt and blocks until the child exits; callers may
// bound it through the context deadline.
type ExecProber struct{}

// NewExecProber creates a Prober backed by os/exec.
func NewExecProber() ExecProber {
	return ExecProber{}
}

// Version reports the binary's major.minor version.
func (p ExecProber) Version(ctx context.Context, exe string) Field {
	out, ok := p.run(ctx, exe, versionScript)
	if !ok {
		return Field{}
	}
	field := parseVersion(out)
	if !field.Known {
		slogcontext.FromCtx(ctx).Debug("discarding unusable version probe output",
			slog.String("exe", exe),
			slog.String("output", out))
	}
	return field
}

// Architecture reports whether the binary is an x64 or an x86 build.
func (p ExecProber) Architecture(ctx context.Context, exe string) Field {
	out, ok := p.run(ctx, exe, architectureScript)
	if !ok {
		return Field{}
	}
	field := parseArchitecture(out)
	if !field.Known {
		slogcontext.FromCtx(ctx).Debug("discarding unusable architecture probe output",
			slog.String("exe", exe),
			slog.String("output", out))
	}
	return field
}

// run launches exe with an inline script and returns its stdout with
// trailing whitespace stripped. Both streams drain into buffers, so no pipe
// outlives the call.
func (p ExecProber) run(ctx context.Context, exe, script string) (string, bool) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, "-c", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slogcontext.FromCtx(ctx).Debug("interpreter probe failed",
			slog.String("exe", exe),
			slog.String("error", err.Error()),
			slog.String("stderr", strings.TrimSpace(stderr.String())))
		return "", false
	}
	return strings.TrimRight(stdout.String(), " \t\r\n"), true
}

// parseVersion accepts output that parses as a version and normalizes it to
// the major.minor pair.
func parseVersion(out string) Field {
	if out == "" {
		return Field{}
	}
	v, err := semver.NewVersion(out)
	if err != nil {
		return Field{}
	}
	return Field{Value: fmt.Sprintf("%d.%d", v.Major(), v.Minor()), Known: true}
}

// parseArchitecture accepts only the two values the probe script can print.
func parseArchitecture(out string) Field {
	switch out {
	case "x64", "x86":
		return Field{Value: out, Known: true}
	default:
		return Field{}
	}
}
