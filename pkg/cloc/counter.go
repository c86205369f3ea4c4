package cloc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Sumatoshi-tech/repogrowth/internal/command"
)

// DefaultBinary is the counting tool looked up on PATH.
const DefaultBinary = "cloc"

// DefaultMatch counts the whole working tree.
const DefaultMatch = "."

const globMeta = "*?[{"

// ownFlags are flags the adapter sets itself. The value reports whether the
// flag consumes the following argument when written without "=".
var ownFlags = map[string]bool{
	"--json":        false,
	"--yaml":        false,
	"--xml":         false,
	"--csv":         false,
	"--md":          false,
	"--sql":         true,
	"--sql-append":  false,
	"--sql-project": true,
	"--sql-style":   true,
	"--report-file": true,
	"--out":         true,
	"--vcs":         true,
	"--list-file":   true,
}

// FileLister lists the version-controlled files of a working tree, relative
// to its root.
type FileLister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// Options select what to count.
type Options struct {
	// Match is a path or a glob pattern ("src/**/*.go"). Empty means DefaultMatch.
	Match string
	// Args are extra cloc arguments placed before the adapter's own flags.
	Args []string
	// Files lists tracked files; required when Match is a glob.
	Files FileLister
}

// Counter runs cloc through a command.Runner.
type Counter struct {
	runner command.Runner
	binary string
	logger *slog.Logger
}

// NewCounter creates a Counter. An empty binary means DefaultBinary.
func NewCounter(runner command.Runner, binary string, logger *slog.Logger) *Counter {
	if binary == "" {
		binary = DefaultBinary
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Counter{runner: runner, binary: binary, logger: logger}
}

// Count runs the tool in dir. The boolean result is false when the tool
// produced no output, which means no files matched.
func (c *Counter) Count(ctx context.Context, dir string, opts Options) (Breakdown, bool, error) {
	match := opts.Match
	if match == "" {
		match = DefaultMatch
	}

	args := c.passthrough(opts.Args)

	if IsGlob(match) {
		listFile, ok, err := c.writeMatches(ctx, match, opts.Files)
		if err != nil {
			return Breakdown{}, false, err
		}

		if !ok {
			c.logger.DebugContext(ctx, "no tracked files match", "match", match)

			return Breakdown{}, false, nil
		}

		defer os.Remove(listFile)

		args = append(args, "--json", "--list-file="+listFile)
	} else {
		args = append(args, "--json", "--vcs=git", match)
	}

	res, err := c.runner.Run(ctx, dir, c.binary, args...)
	if err != nil {
		return Breakdown{}, false, fmt.Errorf("count lines: %w", err)
	}

	if len(bytes.TrimSpace(res.Stdout)) == 0 {
		return Breakdown{}, false, nil
	}

	breakdown, err := Parse(res.Stdout)
	if err != nil {
		return Breakdown{}, false, err
	}

	return breakdown, true, nil
}

// passthrough drops caller arguments that would override the adapter's own
// output and file-selection flags. cloc accepts "_" and "-" interchangeably in
// option names, so both spellings are matched.
func (c *Counter) passthrough(args []string) []string {
	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		name, _, hasValue := strings.Cut(args[i], "=")

		consumesNext, own := ownFlags[strings.ReplaceAll(name, "_", "-")]
		if !own {
			kept = append(kept, args[i])

			continue
		}

		c.logger.Warn("ignoring cloc argument set by repogrowth", "arg", args[i])

		if consumesNext && !hasValue && i+1 < len(args) {
			i++
		}
	}

	return kept
}

// writeMatches filters the tracked files through the glob and writes the
// matches to a temporary list file.
func (c *Counter) writeMatches(ctx context.Context, pattern string, lister FileLister) (string, bool, error) {
	if lister == nil {
		return "", false, fmt.Errorf("glob match %q: %w", pattern, ErrNoFileLister)
	}

	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return "", false, fmt.Errorf("compile match %q: %w", pattern, err)
	}

	files, err := lister.ListFiles(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list files: %w", err)
	}

	var matched []string

	for _, file := range files {
		if matcher.Match(file) {
			matched = append(matched, file)
		}
	}

	if len(matched) == 0 {
		return "", false, nil
	}

	tmp, err := os.CreateTemp("", "repogrowth-files-*.txt")
	if err != nil {
		return "", false, fmt.Errorf("create list file: %w", err)
	}

	_, writeErr := tmp.WriteString(strings.Join(matched, "\n") + "\n")
	closeErr := tmp.Close()

	if writeErr != nil || closeErr != nil {
		os.Remove(tmp.Name())

		return "", false, fmt.Errorf("write list file: %w", errors.Join(writeErr, closeErr))
	}

	c.logger.DebugContext(ctx, "glob matched files", "match", pattern, "files", len(matched))

	return tmp.Name(), true, nil
}

// IsGlob reports whether match contains glob metacharacters.
func IsGlob(match string) bool {
	return strings.ContainsAny(match, globMeta)
}
