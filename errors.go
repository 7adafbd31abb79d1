package cloudpdf

import "errors"

// Error kinds. Every error returned by a Converter is a *BuildError whose
// Kind is one of these.
var (
	ErrExtraction = errors.New("resource extraction failed")
	ErrConfigLoad = errors.New("font configuration failed")
	ErrTransform  = errors.New("transformation failed")
	ErrRender     = errors.New("PDF rendering failed")
	ErrIO         = errors.New("I/O failed")
)

// Validation errors.
var (
	ErrEmptyTarget        = errors.New("target directory cannot be empty")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidAssetPath   = errors.New("invalid asset path")
	ErrStyleNotFound      = errors.New("style not found")
)

// Renderer errors, wrapped as ErrRender.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// BuildError is a build failure with a human-readable message, its kind and
// the underlying cause. errors.Is matches both Kind and Err.
type BuildError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func buildError(kind error, msg string, err error) *BuildError {
	return &BuildError{Kind: kind, Msg: msg, Err: err}
}
