package fontconfig

import "errors"

// Sentinel errors for font configuration loading.
var (
	// ErrTemplate indicates the configuration template could not be loaded or rendered.
	ErrTemplate = errors.New("font configuration template failed")

	// ErrParse indicates the rendered document is not well-formed XML.
	ErrParse = errors.New("failed to parse font configuration")

	// ErrInvalidConfig indicates the document parsed but violates the
	// configuration structure (missing renderer, font without embed-url, ...).
	ErrInvalidConfig = errors.New("invalid font configuration")
)
