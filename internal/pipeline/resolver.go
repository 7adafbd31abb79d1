package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/rackerlabs/cloudpdf/internal/fileutil"
	"golang.org/x/net/html"
)

// Resolver maps a document reference to the URL the renderer should load.
// ok is false when the reference must be left untouched.
type Resolver interface {
	Resolve(ref, baseDir string) (resolved string, ok bool)
}

// FileResolver resolves relative references against the source document's
// directory, then against fallback directories (such as the extracted image
// tree) when the file only exists there.
type FileResolver struct {
	fallbacks []string
}

// NewResolver creates a FileResolver with the given fallback directories.
func NewResolver(fallbackDirs ...string) *FileResolver {
	fallbacks := make([]string, 0, len(fallbackDirs))
	for _, d := range fallbackDirs {
		if abs, err := filepath.Abs(d); err == nil {
			fallbacks = append(fallbacks, abs)
		}
	}
	return &FileResolver{fallbacks: fallbacks}
}

// Resolve implements Resolver.
//
// Left untouched:
//   - URLs (http, https, file, data, protocol-relative)
//   - anchors and absolute paths
//   - references escaping baseDir
func (r *FileResolver) Resolve(ref, baseDir string) (string, bool) {
	if !isRelativePath(ref) {
		return "", false
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", false
	}

	pathPart, fragment, _ := strings.Cut(ref, "#")
	suffix := ""
	if fragment != "" {
		suffix = "#" + fragment
	}

	candidate := filepath.Join(absBase, filepath.FromSlash(pathPart))
	if !isPathUnderDir(candidate, absBase) {
		return "", false
	}
	if fileutil.FileExists(candidate) {
		return fileutil.FileURL(candidate) + suffix, true
	}

	for _, dir := range r.fallbacks {
		fb := filepath.Join(dir, filepath.FromSlash(pathPart))
		if isPathUnderDir(fb, dir) && fileutil.FileExists(fb) {
			return fileutil.FileURL(fb) + suffix, true
		}
	}

	return fileutil.FileURL(candidate) + suffix, true
}

// ResolveReferences rewrites img[src] and a[href] attributes under n.
func ResolveReferences(n *html.Node, r Resolver, baseDir string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			resolveAttr(n, "src", r, baseDir)
		case "a":
			resolveAttr(n, "href", r, baseDir)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ResolveReferences(c, r, baseDir)
	}
}

func resolveAttr(n *html.Node, key string, r Resolver, baseDir string) {
	for i, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		if resolved, ok := r.Resolve(attr.Val, baseDir); ok {
			n.Attr[i].Val = resolved
		}
	}
}

// isRelativePath returns true if the path should be resolved.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "file://") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "mailto:") ||
		strings.HasPrefix(path, "//") {
		return false
	}

	if strings.HasPrefix(path, "#") {
		return false
	}

	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
