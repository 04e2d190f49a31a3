// Package discovery finds the source files to analyze under a directory tree.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// skipDir is never descended into; it holds codefeat's own state.
const skipDir = ".codefeat"

// compiledPattern holds the pattern string, its compiled glob and, for
// patterns starting with "**/", the glob that matches files in the root.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	root    glob.Glob
}

// Discovery walks a root directory and selects files by include and ignore globs.
type Discovery struct {
	rootDir string
	include []compiledPattern
	ignore  []compiledPattern
}

// New compiles the include and ignore patterns. Patterns use "/" as the
// separator and are matched against paths relative to rootDir.
func New(rootDir string, include, ignore []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.ignore, err = compilePatterns(ignore); err != nil {
		return nil, err
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.py" should match both "main.py" and "pkg/main.py".
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.root = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Discover walks the tree and returns matching files sorted by path.
// Ignored directories are not descended into.
func (d *Discovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) {
			return nil
		}
		if matchesAny(relPath, d.include) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.rootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether a path relative to the root would be discovered.
func (d *Discovery) Match(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return !d.shouldIgnore(relPath) && matchesAny(relPath, d.include)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if relPath == skipDir || strings.HasPrefix(relPath, skipDir+"/") {
		return true
	}

	if matchesAny(relPath, d.ignore) {
		return true
	}

	// A directory "node_modules" matches the pattern "node_modules/**".
	return matchesAny(relPath+"/**", d.ignore)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	inRoot := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if inRoot && cp.root != nil && cp.root.Match(path) {
			return true
		}
	}
	return false
}

// Expand resolves command-line arguments into files: regular files are kept
// as given, directories are walked with a Discovery built from include and
// ignore. The result preserves argument order and drops duplicates.
func Expand(args, include, ignore []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		d, err := New(arg, include, ignore)
		if err != nil {
			return nil, err
		}
		files, err := d.Discover()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
