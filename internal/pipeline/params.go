package pipeline

import (
	"strconv"
	"strings"
)

// Transform parameter names understood by DocTransformer.
const (
	// ParamAdmonGraphicsPath is the separator-terminated directory holding
	// admonition icons ({type}.svg).
	ParamAdmonGraphicsPath = "admon.graphics.path"

	// ParamCalloutGraphicsPath is the separator-terminated directory holding
	// callout graphics ({N}.svg).
	ParamCalloutGraphicsPath = "callout.graphics.path"

	// ParamCalloutGraphicsLimit is the highest callout number with a graphic;
	// callouts above it are written as "(N)". Defaults to
	// DefaultCalloutGraphicsLimit.
	ParamCalloutGraphicsLimit = "callout.graphics.number.limit"

	// ParamBackgroundImage is the cover page background image. The cover page
	// is only laid out when it is set.
	ParamBackgroundImage = "cloud.api.background.image"

	// ParamSubtitle is an optional cover page subtitle.
	ParamSubtitle = "cloud.api.subtitle"
)

// DefaultCalloutGraphicsLimit matches the bundled callouts/1..15.svg.
const DefaultCalloutGraphicsLimit = 15

// Params holds named string parameters for one transformation.
type Params map[string]string

// Set stores value under name, replacing any previous value.
func (p Params) Set(name, value string) {
	p[name] = value
}

// Get returns the value stored under name, or "".
func (p Params) Get(name string) string {
	return p[name]
}

// Int returns the positive integer stored under name, or def when the
// value is missing or not a positive integer.
func (p Params) Int(name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(p[name]))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// TransformContext carries the per-document state of a transformation.
type TransformContext struct {
	SourcePath string // source document
	TargetPath string // intermediate document being produced
	Params     Params
}

// NewTransformContext creates a context with an empty parameter set.
func NewTransformContext(sourcePath, targetPath string) *TransformContext {
	return &TransformContext{
		SourcePath: sourcePath,
		TargetPath: targetPath,
		Params:     make(Params),
	}
}
