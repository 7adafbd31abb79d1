// Package resources holds the image and font trees bundled with cloudpdf and
// copies them onto disk at build time.
//
// The bundle is compiled into the binary:
//
//	bundle/
//	├── images/
//	│   ├── note.svg, tip.svg, important.svg, warning.svg, caution.svg
//	│   ├── callouts/{1..15}.svg
//	│   └── cloud/cover.svg
//	└── fonts/
//	    └── fontconfig.tpl
//
// Extract copies one named tree under a destination parent directory,
// preserving structure. Re-running it overwrites files with identical content.
package resources
