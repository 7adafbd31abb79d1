package resources

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// Tree names shipped in the bundle.
const (
	TreeImages = "images"
	TreeFonts  = "fonts"
)

//go:embed all:bundle
var bundle embed.FS

// Bundle returns the embedded resource filesystem rooted at the tree names.
func Bundle() fs.FS {
	sub, err := fs.Sub(bundle, "bundle")
	if err != nil {
		// Only fails for an invalid literal path.
		panic(err)
	}
	return sub
}

// Extractor copies resource trees from a filesystem to disk.
type Extractor struct {
	fsys   fs.FS
	logger *slog.Logger
}

// NewExtractor creates an Extractor reading from fsys.
// A nil logger discards extraction logs.
func NewExtractor(fsys fs.FS, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{fsys: fsys, logger: logger}
}

// NewBundleExtractor creates an Extractor over the embedded bundle.
func NewBundleExtractor(logger *slog.Logger) *Extractor {
	return NewExtractor(Bundle(), logger)
}

// ValidateTreeName checks that name is a single path element.
func ValidateTreeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTreeName)
	}
	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidTreeName, name)
	}
	return nil
}

// Extract copies every file under tree name into destParent/name and returns
// that directory. Intermediate directories are created as needed and existing
// files are overwritten.
func (e *Extractor) Extract(name, destParent string) (string, error) {
	if err := ValidateTreeName(name); err != nil {
		return "", err
	}

	info, err := fs.Stat(e.fsys, name)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrTreeNotFound, name)
	}

	dest := filepath.Join(destParent, name)
	var written []string

	fail := func(p string, err error) error {
		return &ExtractionError{Tree: name, Path: p, Written: written, Err: err}
	}

	if err := os.MkdirAll(dest, dirPermissions); err != nil {
		return "", fail(dest, err)
	}

	err = fs.WalkDir(e.fsys, name, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fail(p, walkErr)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, name), "/")
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			if err := os.MkdirAll(target, dirPermissions); err != nil {
				return fail(target, err)
			}
			return nil
		}

		if err := copyFile(e.fsys, p, target); err != nil {
			return fail(target, err)
		}
		written = append(written, rel)
		return nil
	})
	if err != nil {
		return "", err
	}

	e.logger.Debug("extracted resource tree", "tree", name, "dest", dest, "files", len(written))
	return dest, nil
}

// List returns the slash-separated paths of the files in tree name,
// relative to the tree root, in lexical order.
func (e *Extractor) List(name string) ([]string, error) {
	if err := ValidateTreeName(name); err != nil {
		return nil, err
	}

	var files []string
	err := fs.WalkDir(e.fsys, name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := strings.CutPrefix(p, name+"/")
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTreeNotFound, name)
	}
	return files, nil
}

// copyFile streams src from fsys into dst, truncating dst if it exists.
func copyFile(fsys fs.FS, src, dst string) (err error) {
	in, err := fsys.Open(path.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	// #nosec G304 -- dst is built from the bundle layout under destParent
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

var defaultExtractor = NewBundleExtractor(nil)

// Extract copies a bundled tree using the default extractor.
func Extract(name, destParent string) (string, error) {
	return defaultExtractor.Extract(name, destParent)
}

// List lists a bundled tree using the default extractor.
func List(name string) ([]string, error) {
	return defaultExtractor.List(name)
}
