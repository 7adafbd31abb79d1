package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rackerlabs/cloudpdf/internal/fileutil"
)

// Sentinel errors for source discovery.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrDuplicateOutput  = errors.New("sources map to the same output")
)

// source is a document to build. RelDir mirrors its location below the
// directory it was discovered in, so <target>/<RelDir> holds its output.
type source struct {
	Path   string
	RelDir string
}

// discoverSources expands inputs into the documents to build. Files must be
// Markdown; directories are walked recursively, skipping hidden directories
// and skipDir (the target, which may live inside a source tree).
func discoverSources(inputs []string, skipDir string) ([]source, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	skipAbs := ""
	if skipDir != "" {
		if abs, err := filepath.Abs(skipDir); err == nil {
			skipAbs = abs
		}
	}

	var sources []source
	seen := make(map[string]string)

	add := func(path, relDir string) error {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		key := filepath.Join(relDir, base)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s", ErrDuplicateOutput, prev, path)
		}
		seen[key] = path
		sources = append(sources, source{Path: path, RelDir: relDir})
		return nil
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !fileutil.IsMarkdown(input) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, input)
			}
			if err := add(input, ""); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if path != input && (strings.HasPrefix(d.Name(), ".") || isSameDir(path, skipAbs)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !fileutil.IsMarkdown(path) {
				return nil
			}
			return add(path, relativeDir(input, path))
		})
		if err != nil {
			return nil, err
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no Markdown files found in %s", ErrNoInput, strings.Join(inputs, ", "))
	}
	return sources, nil
}

// relativeDir returns the directory of path relative to root, or "" when
// path sits directly in root.
func relativeDir(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return rel
}

func isSameDir(path, abs string) bool {
	if abs == "" {
		return false
	}
	p, err := filepath.Abs(path)
	return err == nil && p == abs
}
