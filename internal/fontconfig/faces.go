package fontconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Face is a resolved font file ready to be declared to the renderer.
type Face struct {
	Family string
	Style  string
	Weight string
	Path   string // absolute file path
	Format string // CSS format() hint: truetype, opentype, woff, woff2
}

// fontFormats maps detected MIME types to CSS format hints.
var fontFormats = []struct {
	mime   string
	format string
}{
	{"font/ttf", "truetype"},
	{"font/otf", "opentype"},
	{"font/woff2", "woff2"},
	{"font/woff", "woff"},
}

// Faces resolves the configuration into font faces. Declared fonts whose file
// is missing or not a font are skipped; configured directories are scanned
// for font files, and files already declared explicitly are not repeated.
func (c *Config) Faces() ([]Face, error) {
	var faces []Face
	seen := make(map[string]bool)

	for _, f := range c.fonts {
		p := urlToPath(f.URL)
		format, ok := detectFormat(p)
		if !ok {
			continue
		}
		seen[p] = true
		for _, t := range f.Triplets {
			faces = append(faces, Face{Family: t.Name, Style: t.Style, Weight: t.Weight, Path: p, Format: format})
		}
	}

	for _, d := range c.directories {
		found, err := scanDirectory(d)
		if err != nil {
			return nil, err
		}
		for _, face := range found {
			if seen[face.Path] {
				continue
			}
			seen[face.Path] = true
			faces = append(faces, face)
		}
	}

	return faces, nil
}

// scanDirectory lists font files under d, in lexical order.
func scanDirectory(d Directory) ([]Face, error) {
	root := urlToPath(d.Path)
	var faces []Face

	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipAll
			}
			return err
		}
		if entry.IsDir() {
			if p != root && !d.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		format, ok := detectFormat(p)
		if !ok {
			return nil
		}
		family, style, weight := parseFontFileName(filepath.Base(p))
		faces = append(faces, Face{Family: family, Style: style, Weight: weight, Path: p, Format: format})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning font directory %s: %w", root, err)
	}

	sort.SliceStable(faces, func(i, j int) bool { return faces[i].Path < faces[j].Path })
	return faces, nil
}

// detectFormat sniffs the file content and returns its CSS format hint.
func detectFormat(p string) (string, bool) {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return "", false
	}
	for _, f := range fontFormats {
		if mt.Is(f.mime) {
			return f.format, true
		}
	}
	return "", false
}

// weightSuffixes is ordered so compound names match before their parts.
var weightSuffixes = []struct {
	token  string
	weight string
}{
	{"ExtraLight", "200"},
	{"UltraLight", "200"},
	{"SemiBold", "600"},
	{"DemiBold", "600"},
	{"ExtraBold", "800"},
	{"UltraBold", "800"},
	{"Thin", "100"},
	{"Light", "300"},
	{"Medium", "500"},
	{"Bold", "bold"},
	{"Black", "900"},
	{"Heavy", "900"},
}

// parseFontFileName derives family, style and weight from names such as
// DejaVuSans-BoldOblique.ttf or Inter-SemiBoldItalic.woff2.
func parseFontFileName(name string) (family, style, weight string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	family, variant, _ := strings.Cut(stem, "-")
	style, weight = "normal", "normal"

	switch {
	case strings.Contains(variant, "Italic"):
		style = "italic"
	case strings.Contains(variant, "Oblique"):
		style = "oblique"
	}

	for _, s := range weightSuffixes {
		if strings.Contains(variant, s.token) {
			weight = s.weight
			break
		}
	}
	return family, style, weight
}

// urlToPath accepts a plain path or a file: URL.
func urlToPath(ref string) string {
	if strings.HasPrefix(ref, "file:") {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			return filepath.FromSlash(u.Path)
		}
		return filepath.FromSlash(strings.TrimPrefix(ref, "file:"))
	}
	return ref
}

// CSS renders @font-face rules declaring faces to a browser-based renderer.
func CSS(faces []Face) string {
	var b strings.Builder
	for _, f := range faces {
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(f.Path)}
		fmt.Fprintf(&b, "@font-face {\n  font-family: %q;\n  src: url(%q) format(%q);\n  font-style: %s;\n  font-weight: %s;\n}\n",
			cssSafe(f.Family), u.String(), f.Format, f.Style, f.Weight)
	}
	return b.String()
}

// cssSafe drops characters that would end a quoted CSS string.
func cssSafe(s string) string {
	return strings.NewReplacer(`"`, "", `\`, "", "\n", " ").Replace(s)
}
