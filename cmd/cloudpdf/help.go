package main

import (
	"fmt"
	"io"
)

// printUsage prints the command usage.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cloudpdf [flags] <file|dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build branded PDFs from Markdown sources. Bundled images and fonts are")
	fmt.Fprintln(w, "extracted next to the target directory, each source is transformed into")
	fmt.Fprintln(w, "<target>/<name>.fo and rendered into <target>/<name>.pdf.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file|dir    Markdown files or directories (optional if config has sources)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -o, --target <dir>        Build target directory (default \"target\")")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --verify              Verify each PDF and report its page count")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name>        Stylesheet name (default \"cloud\")")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory (styles/, templates/)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --list-resources      List bundled images and fonts, then exit")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CLOUDPDF_CONFIG, CLOUDPDF_TARGET, CLOUDPDF_STYLE, CLOUDPDF_ASSET_PATH,")
	fmt.Fprintln(w, "  CLOUDPDF_PAGE_SIZE, CLOUDPDF_TIMEOUT, CLOUDPDF_WORKERS")
	fmt.Fprintln(w, "  Variables are also read from a .env file in the working directory.")
	fmt.Fprintln(w, "  Priority: flags > environment > config file > defaults.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general, 2 usage/config, 3 I/O, 4 browser/render")
}
