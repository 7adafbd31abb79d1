package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName rejects names that are empty or could select a
	// different file (separators, dots, NUL).
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath reports an asset directory that cannot be opened.
	ErrInvalidBasePath = errors.New("invalid asset directory")

	// ErrAssetRead covers any other failure to read an asset, including a
	// path leaving the asset directory.
	ErrAssetRead = errors.New("failed to read asset")
)
