// Package cloudpdf builds branded PDFs from Markdown documents.
//
// # Quick Start
//
// Create a converter for a target directory, convert, and close when done:
//
//	conv, err := cloudpdf.NewConverter("build/docs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, "docs/guide.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Job.Output) // build/docs/guide.pdf
//
// # Build Phases
//
// Every conversion runs three sequential phases:
//
//  1. Setup (PreProcess): the target directory is created and the bundled
//     images and fonts trees are extracted next to it, once per converter.
//  2. Transform: the Markdown source becomes an intermediate formatting
//     document (guide.fo, XHTML) parameterized with the extracted admonition
//     and callout graphics and the cover image (see AdjustTransformer).
//  3. Render (PostProcessResult): the font configuration is generated from
//     the extracted fonts/fontconfig.tpl, the intermediate document is copied
//     through an identity transform that adds the renderer setup, and headless
//     Chrome prints the PDF next to it.
//
// Failures are returned as *BuildError; use errors.Is with ErrExtraction,
// ErrConfigLoad, ErrTransform, ErrRender or ErrIO to classify them.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := cloudpdf.NewConverter("build/docs",
//	    cloudpdf.WithTimeout(2*time.Minute),
//	    cloudpdf.WithPage(&cloudpdf.PageSettings{Size: "a4", Orientation: "portrait", Margin: 0.75}),
//	    cloudpdf.WithParams(map[string]string{"cloud.api.subtitle": "API Reference"}),
//	    cloudpdf.WithLogger(slog.Default()),
//	)
//
// The font configuration hook can be replaced with WithConfigLoader.
//
// # Parallel Processing
//
// For batch builds, prepare once and share the paths with a ConverterPool:
//
//	first, _ := cloudpdf.NewConverter(target)
//	if err := first.PreProcess(ctx); err != nil { ... }
//	pool := cloudpdf.NewConverterPool(4, func() (*cloudpdf.Converter, error) {
//	    return cloudpdf.NewConverter(target, cloudpdf.WithPreparedPaths(first.Paths()))
//	})
//	defer pool.Close()
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
// Use ROD_BROWSER_BIN to specify a custom Chrome binary; the sandbox is
// disabled when it is set or when CI=true.
package cloudpdf
