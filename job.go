package cloudpdf

import (
	"path/filepath"
	"strings"
	"time"
)

// Job describes the conversion of one source document.
type Job struct {
	Source       string // source document
	Intermediate string // formatting document (.fo) under the target directory
	Output       string // PDF, next to the intermediate document
}

// NewJob places the intermediate document for source under
// paths.TargetDir/relDir, named after the source with a .fo extension.
// relDir lets batch builds mirror the source tree; it may be empty and is
// ignored when it would leave the target directory.
func NewJob(paths BuildPaths, source, relDir string) Job {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + IntermediateExt

	if relDir != "" && !filepath.IsLocal(relDir) {
		relDir = ""
	}

	intermediate := filepath.Join(paths.TargetDir, relDir, base)
	return Job{
		Source:       source,
		Intermediate: intermediate,
		Output:       OutputFile(intermediate),
	}
}

// Result reports a completed job.
type Result struct {
	Job      Job
	Pages    int // 0 unless verification is enabled
	Duration time.Duration
}
