package cloudpdf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rackerlabs/cloudpdf/internal/resources"
)

// Locations of extracted resources relative to the target's parent directory.
const (
	calloutSubdir = "callouts"
	coverImage    = "cloud/cover.svg"
)

// BuildPaths are the absolute locations a build reads from and writes to.
// Resources are extracted next to the target directory, so ImageDir and
// FontDir are siblings of TargetDir.
type BuildPaths struct {
	TargetDir  string
	ParentDir  string
	ImageDir   string
	CalloutDir string
	CoverImage string
	FontDir    string
}

// NewBuildPaths derives BuildPaths from the target directory.
// The result is deterministic for a given target; nothing is created.
func NewBuildPaths(targetDir string) (BuildPaths, error) {
	if strings.TrimSpace(targetDir) == "" {
		return BuildPaths{}, ErrEmptyTarget
	}

	target, err := filepath.Abs(targetDir)
	if err != nil {
		return BuildPaths{}, fmt.Errorf("resolving target directory: %w", err)
	}

	parent := filepath.Dir(target)
	images := filepath.Join(parent, resources.TreeImages)

	return BuildPaths{
		TargetDir:  target,
		ParentDir:  parent,
		ImageDir:   images,
		CalloutDir: filepath.Join(images, calloutSubdir),
		CoverImage: filepath.Join(images, filepath.FromSlash(coverImage)),
		FontDir:    filepath.Join(parent, resources.TreeFonts),
	}, nil
}

// AdmonitionGraphicsPath returns ImageDir terminated by a path separator.
func (p BuildPaths) AdmonitionGraphicsPath() string {
	return withSeparator(p.ImageDir)
}

// CalloutGraphicsPath returns CalloutDir terminated by a path separator.
func (p BuildPaths) CalloutGraphicsPath() string {
	return withSeparator(p.CalloutDir)
}

func withSeparator(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

// Intermediate and output extensions.
const (
	IntermediateExt = ".fo"
	OutputExt       = ".pdf"
)

// OutputFile maps an intermediate document path to its PDF path.
// A trailing ".fo" is replaced by ".pdf"; any other extension is replaced,
// and ".pdf" is appended when there is none. Only the final ".fo" changes:
// "a.fo.fo" becomes "a.fo.pdf".
func OutputFile(path string) string {
	if strings.HasSuffix(path, IntermediateExt) {
		return strings.TrimSuffix(path, IntermediateExt) + OutputExt
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + OutputExt
}
