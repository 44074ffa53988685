package validator

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/system"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// ValidateAll expands patterns and validates every matched document concurrently.
// Patterns may be plain paths, StdinPath or doublestar globs such as workflows/**/*.arazzo.yaml.
// Results are returned in the order documents were matched. A path that does not exist or is a directory
// yields a failed Result carrying Err rather than discarding the other documents.
func (v *Validator) ValidateAll(ctx context.Context, patterns []string) ([]*Result, error) {
	if len(patterns) == 0 {
		return nil, ErrMissingArgument
	}

	paths, err := v.expand(patterns)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for i, p := range paths {
		g.Go(func() error {
			res, err := v.Validate(gctx, p)
			switch {
			case errors.Is(err, ErrFileNotFound), errors.Is(err, ErrNotAFile):
				res = &Result{Path: p, Err: err}
			case err != nil:
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (v *Validator) expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string

	add := func(p string) {
		key := p
		if p != StdinPath {
			if abs, err := filepath.Abs(p); err == nil {
				key = abs
			}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		paths = append(paths, p)
	}

	for _, pattern := range patterns {
		if pattern == "" {
			return nil, ErrMissingArgument
		}
		if pattern == StdinPath || !hasMeta(pattern) {
			add(pattern)
			continue
		}

		base, pat := doublestar.SplitPattern(filepath.ToSlash(pattern))
		matches, err := doublestar.Glob(dirFS{fs: v.fs, dir: base}, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, ErrNoMatches.Wrapf("%s", pattern)
		}
		for _, m := range matches {
			add(filepath.FromSlash(path.Join(base, m)))
		}
	}

	return paths, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// dirFS roots a VirtualFS at dir so it can be handed to doublestar.
type dirFS struct {
	fs  system.VirtualFS
	dir string
}

func (d dirFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := d.fs.Open(path.Join(d.dir, name))
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f, err
}

// ExitCodeFor maps an error returned by Validate or ValidateAll to a process exit code.
// Usage errors map to 2, everything else to 1.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMissingArgument):
		return 2
	default:
		return 1
	}
}

// ExitCode aggregates the outcome of ValidateAll into a single exit code.
func ExitCode(results []*Result, err error) int {
	if err != nil {
		return ExitCodeFor(err)
	}
	for _, r := range results {
		if r != nil && r.ExitCode() != 0 {
			return 1
		}
	}
	return 0
}
