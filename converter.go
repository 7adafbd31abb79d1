package cloudpdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rackerlabs/cloudpdf/internal/assets"
	"github.com/rackerlabs/cloudpdf/internal/fontconfig"
	"github.com/rackerlabs/cloudpdf/internal/pipeline"
	"github.com/rackerlabs/cloudpdf/internal/resources"
)

const dirPermissions = 0o750

// ConfigLoader obtains the font configuration used to set up the renderer.
// fontDir is the directory the fonts tree was extracted to.
type ConfigLoader interface {
	LoadConfig(fontDir string) (*fontconfig.Config, error)
}

// ConfigLoaderFunc adapts a function to ConfigLoader.
type ConfigLoaderFunc func(fontDir string) (*fontconfig.Config, error)

// LoadConfig calls f(fontDir).
func (f ConfigLoaderFunc) LoadConfig(fontDir string) (*fontconfig.Config, error) {
	return f(fontDir)
}

// extractor copies a bundled resource tree under destParent.
type extractor interface {
	Extract(name, destParent string) (string, error)
}

// Compile-time interface checks.
var (
	_ extractor            = (*resources.Extractor)(nil)
	_ pipeline.Transformer = (*pipeline.DocTransformer)(nil)
	_ pdfRenderer          = (*rodRenderer)(nil)
)

// Converter builds PDFs from Markdown sources in three sequential phases:
// resource setup (PreProcess), transformation to a formatting document
// (Transform) and rendering (PostProcessResult).
// Create with NewConverter and Close when done.
type Converter struct {
	cfg    converterConfig
	logger *slog.Logger
	paths  BuildPaths

	prepareOnce sync.Once
	prepareErr  error

	extractor    extractor
	configLoader ConfigLoader
	transformer  pipeline.Transformer
	renderer     pdfRenderer
	openInput    func(path string) (io.ReadCloser, error)
	openOutput   func(path string) (io.WriteCloser, error)
	countPages   func(path string) (int, error)
}

// NewConverter creates a Converter writing into targetDir.
// Nothing touches the filesystem until PreProcess or a conversion runs.
func NewConverter(targetDir string, opts ...Option) (*Converter, error) {
	paths, err := NewBuildPaths(targetDir)
	if err != nil {
		return nil, err
	}

	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			style:   assets.DefaultStyleName,
		},
		paths:      paths,
		openInput:  openFile,
		openOutput: createFile,
		countPages: pageCount,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.cfg.logger
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	if err := c.cfg.page.Validate(); err != nil {
		return nil, err
	}

	if c.cfg.paths != nil {
		c.paths = *c.cfg.paths
		c.prepareOnce.Do(func() {})
	}

	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		loader = resolver
	}

	if c.transformer == nil {
		c.transformer, err = newTransformer(loader, c.cfg.style, c.paths)
		if err != nil {
			return nil, err
		}
	}

	if c.extractor == nil {
		c.extractor = resources.NewBundleExtractor(c.logger)
	}
	if c.configLoader == nil {
		c.configLoader = ConfigLoaderFunc(fontconfig.NewBuilder(fontconfig.DefaultTemplateName, c.logger).Build)
	}
	if c.renderer == nil {
		c.renderer = newRodRenderer(c.cfg.timeout, c.logger)
	}

	return c, nil
}

func newTransformer(loader assets.AssetLoader, style string, paths BuildPaths) (*pipeline.DocTransformer, error) {
	css, err := loader.LoadStyle(style)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrStyleNotFound, style, err)
	}

	cover, err := loader.LoadTemplate(assets.CoverTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading cover template: %w", err)
	}

	return pipeline.NewDocTransformer(pipeline.NewResolver(paths.ImageDir), css, cover)
}

// Paths returns the build paths of the converter.
func (c *Converter) Paths() BuildPaths {
	return c.paths
}

// PreProcess creates the target directory and extracts the images and fonts
// trees next to it. It runs once per Converter; later calls return the first
// outcome.
func (c *Converter) PreProcess(ctx context.Context) error {
	c.prepareOnce.Do(func() {
		c.prepareErr = c.prepare(ctx)
	})
	return c.prepareErr
}

func (c *Converter) prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return buildError(ErrExtraction, "resource extraction cancelled", err)
	}

	if err := os.MkdirAll(c.paths.TargetDir, dirPermissions); err != nil {
		return buildError(ErrIO, fmt.Sprintf("failed to create target directory %s", c.paths.TargetDir), err)
	}

	for _, tree := range []string{resources.TreeImages, resources.TreeFonts} {
		dest, err := c.extractor.Extract(tree, c.paths.ParentDir)
		if err != nil {
			return buildError(ErrExtraction, fmt.Sprintf("failed to extract %s", tree), err)
		}
		c.logger.Debug("extracted resources", "tree", tree, "dir", dest)
	}

	c.logger.Info("build prepared", "target", c.paths.TargetDir)
	return nil
}

// AdjustTransformer sets the transform parameters pointing at the extracted
// graphics and cover image. Parameters from WithParams are applied first.
func (c *Converter) AdjustTransformer(tc *pipeline.TransformContext) {
	if tc.Params == nil {
		tc.Params = make(pipeline.Params)
	}
	for name, value := range c.cfg.params {
		tc.Params.Set(name, value)
	}

	tc.Params.Set(pipeline.ParamAdmonGraphicsPath, c.paths.AdmonitionGraphicsPath())
	tc.Params.Set(pipeline.ParamCalloutGraphicsPath, c.paths.CalloutGraphicsPath())
	tc.Params.Set(pipeline.ParamBackgroundImage, c.paths.CoverImage)
}

// Transform converts job.Source into the formatting document at
// job.Intermediate.
func (c *Converter) Transform(ctx context.Context, job Job) error {
	if err := c.PreProcess(ctx); err != nil {
		return err
	}

	src, err := c.openInput(job.Source)
	if err != nil {
		return buildError(ErrIO, fmt.Sprintf("failed to open %s for input", job.Source), err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(job.Intermediate), dirPermissions); err != nil {
		return buildError(ErrIO, fmt.Sprintf("failed to create directory for %s", job.Intermediate), err)
	}

	dst, err := c.openOutput(job.Intermediate)
	if err != nil {
		return buildError(ErrIO, fmt.Sprintf("failed to open %s for output", job.Intermediate), err)
	}

	tc := pipeline.NewTransformContext(job.Source, job.Intermediate)
	c.AdjustTransformer(tc)

	transformErr := c.transformer.Transform(ctx, tc, src, dst)
	closeErr := dst.Close()

	if transformErr != nil {
		return buildError(ErrTransform, fmt.Sprintf("failed to transform %s", job.Source), transformErr)
	}
	if closeErr != nil {
		return buildError(ErrIO, fmt.Sprintf("failed to write %s", job.Intermediate), closeErr)
	}

	c.logger.Debug("transformed", "source", job.Source, "intermediate", job.Intermediate)
	return nil
}

// PostProcessResult renders the formatting document at foPath into the PDF
// named by OutputFile(foPath). Both files are closed on every path.
func (c *Converter) PostProcessResult(ctx context.Context, foPath string) (*Result, error) {
	start := time.Now()

	if err := c.PreProcess(ctx); err != nil {
		return nil, err
	}

	cfg, err := c.configLoader.LoadConfig(c.paths.FontDir)
	if err != nil {
		return nil, buildError(ErrConfigLoad, "failed to load font configuration", err)
	}
	faces, err := cfg.Faces()
	if err != nil {
		return nil, buildError(ErrConfigLoad, "failed to read configured fonts", err)
	}
	c.logger.Debug("font configuration loaded", "faces", len(faces), "directories", len(cfg.Directories()))

	output := OutputFile(foPath)

	in, err := c.openInput(foPath)
	if err != nil {
		return nil, buildError(ErrIO, fmt.Sprintf("failed to open %s for input", foPath), err)
	}
	defer func() { _ = in.Close() }()

	out, err := c.openOutput(output)
	if err != nil {
		return nil, buildError(ErrIO, fmt.Sprintf("failed to open %s for output", output), err)
	}

	renderErr := c.render(ctx, in, out, fontconfig.CSS(faces))
	closeErr := out.Close()

	if renderErr != nil {
		return nil, renderErr
	}
	if closeErr != nil {
		return nil, buildError(ErrIO, fmt.Sprintf("failed to write %s", output), closeErr)
	}

	result := &Result{
		Job: Job{Intermediate: foPath, Output: output},
	}

	if c.cfg.verify {
		pages, err := c.countPages(output)
		if err != nil {
			return nil, buildError(ErrRender, fmt.Sprintf("failed to verify %s", output), err)
		}
		result.Pages = pages
	}

	result.Duration = time.Since(start)
	c.logger.Info("rendered", "output", output, "pages", result.Pages, "duration", result.Duration)
	return result, nil
}

// Run executes job: Transform, then PostProcessResult on its intermediate.
func (c *Converter) Run(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()

	if err := c.Transform(ctx, job); err != nil {
		return nil, err
	}

	result, err := c.PostProcessResult(ctx, job.Intermediate)
	if err != nil {
		return nil, err
	}

	result.Job = job
	result.Duration = time.Since(start)
	return result, nil
}

// Convert builds the PDF for source, placing its intermediate document
// directly in the target directory.
func (c *Converter) Convert(ctx context.Context, source string) (*Result, error) {
	return c.Run(ctx, NewJob(c.paths, source, ""))
}

// Close releases the renderer's browser.
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
