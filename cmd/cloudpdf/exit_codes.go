package main

import (
	"errors"
	"os"

	"github.com/rackerlabs/cloudpdf"
	"github.com/rackerlabs/cloudpdf/internal/config"
)

// Exit codes for the cloudpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All documents built
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, extraction
	ExitBrowser = 4 // Browser/Chrome and rendering errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, cloudpdf.ErrBrowserConnect) ||
		errors.Is(err, cloudpdf.ErrPageCreate) ||
		errors.Is(err, cloudpdf.ErrPageLoad) ||
		errors.Is(err, cloudpdf.ErrPDFGeneration) ||
		errors.Is(err, cloudpdf.ErrRender) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, cloudpdf.ErrEmptyTarget) ||
		errors.Is(err, cloudpdf.ErrInvalidPageSize) ||
		errors.Is(err, cloudpdf.ErrInvalidOrientation) ||
		errors.Is(err, cloudpdf.ErrInvalidMargin) ||
		errors.Is(err, cloudpdf.ErrInvalidAssetPath) ||
		errors.Is(err, cloudpdf.ErrStyleNotFound) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrDuplicateOutput) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, cloudpdf.ErrIO) ||
		errors.Is(err, cloudpdf.ErrExtraction) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	return ExitGeneral
}
