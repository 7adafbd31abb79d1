package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/rackerlabs/cloudpdf"
	"github.com/rackerlabs/cloudpdf/internal/assets"
	"github.com/rackerlabs/cloudpdf/internal/config"
	"github.com/rackerlabs/cloudpdf/internal/hints"
	"github.com/rackerlabs/cloudpdf/internal/resources"
)

// defaultTarget mirrors the conventional build output directory.
const defaultTarget = "target"

// runMain runs the command with args (without the program name) and
// returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseFlags(args, env.Stderr)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		fmt.Fprintln(env.Stderr, "Run 'cloudpdf --help' for usage.")
		return exitCodeFor(err)
	}

	switch {
	case flags.help:
		printUsage(env.Stdout)
		return ExitSuccess
	case flags.version:
		fmt.Fprintf(env.Stdout, "cloudpdf %s\n", Version)
		return ExitSuccess
	case flags.listResources:
		if err := listResources(env.Stdout); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	}

	if err := run(ctx, flags, positional, env); err != nil {
		if !errors.Is(err, errBatchFailed) {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// errBatchFailed wraps the first job error once results are printed.
var errBatchFailed = errors.New("some documents failed")

// run resolves the configuration, prepares the build once and converts
// every discovered source through the pool.
func run(ctx context.Context, flags *cliFlags, positional []string, env *Environment) error {
	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg, err := loadConfig(flags.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.quiet, flags.verbose)

	inputs := positional
	if len(inputs) == 0 {
		inputs = cfg.Sources
	}
	target := cfg.Target
	if target == "" {
		target = defaultTarget
	}

	sources, err := discoverSources(inputs, target)
	if err != nil {
		return fmt.Errorf("discovering sources: %w", err)
	}

	opts, err := converterOptions(cfg, logger)
	if err != nil {
		return err
	}

	// Extraction happens once, before any converter dereferences a path
	setup, err := cloudpdf.NewConverter(target, opts...)
	if err != nil {
		return err
	}
	err = setup.PreProcess(ctx)
	paths := setup.Paths()
	_ = setup.Close()
	if err != nil {
		return err
	}

	jobs := make([]cloudpdf.Job, len(sources))
	for i, src := range sources {
		jobs[i] = cloudpdf.NewJob(paths, src.Path, src.RelDir)
	}

	poolSize := min(cloudpdf.ResolvePoolSize(cfg.Workers), len(jobs))
	logger.Debug("starting build", "documents", len(jobs), "workers", poolSize, "target", paths.TargetDir)

	pooled := append(slices.Clone(opts), cloudpdf.WithPreparedPaths(paths))
	pool := env.NewPool(poolSize, func() (*cloudpdf.Converter, error) {
		return cloudpdf.NewConverter(target, pooled...)
	})
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "error", err)
		}
	}()

	results := convertBatch(ctx, pool, jobs)
	if err := printResults(results, flags.quiet, flags.verbose, env.Stdout, env.Stderr); err != nil {
		return fmt.Errorf("%w: %w", errBatchFailed, err)
	}
	return nil
}

// loadConfig loads the config named by the flag, else by CLOUDPDF_CONFIG,
// else returns defaults.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	return cfg, nil
}

// mergeFlags applies explicitly set flags over cfg (CLI wins).
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	changed := flags.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if changed("target") {
		cfg.Target = flags.target
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	if changed("style") {
		cfg.Style = flags.style
	}
	if changed("asset-path") {
		cfg.AssetPath = flags.assetPath
	}
	if changed("page-size") {
		cfg.Page.Size = flags.page.size
	}
	if changed("orientation") {
		cfg.Page.Orientation = flags.page.orientation
	}
	if changed("margin") {
		cfg.Page.Margin = flags.page.margin
	}
	if changed("verify") {
		cfg.Verify = flags.verify
	}
}

// converterOptions translates cfg into converter options. Empty values
// keep the converter defaults.
func converterOptions(cfg *config.Config, logger *slog.Logger) ([]cloudpdf.Option, error) {
	opts := []cloudpdf.Option{
		cloudpdf.WithLogger(logger),
		cloudpdf.WithPage(pageSettings(cfg.Page)),
		cloudpdf.WithVerify(cfg.Verify),
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, cloudpdf.WithTimeout(timeout))
	}
	if cfg.Style != "" {
		opts = append(opts, cloudpdf.WithStyle(cfg.Style))
	}
	if cfg.AssetPath != "" {
		opts = append(opts, cloudpdf.WithAssetPath(cfg.AssetPath))
	}
	if len(cfg.Params) > 0 {
		opts = append(opts, cloudpdf.WithParams(cfg.Params))
	}
	return opts, nil
}

// pageSettings fills unset page fields with defaults.
func pageSettings(p config.PageConfig) *cloudpdf.PageSettings {
	page := cloudpdf.DefaultPageSettings()
	if p.Size != "" {
		page.Size = strings.ToLower(p.Size)
	}
	if p.Orientation != "" {
		page.Orientation = strings.ToLower(p.Orientation)
	}
	if p.Margin != 0 {
		page.Margin = p.Margin
	}
	return page
}

// newLogger returns a text logger on w: warnings by default, errors only
// with quiet, everything with verbose.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// listResources prints the bundled resource trees.
func listResources(w io.Writer) error {
	for _, tree := range []string{resources.TreeImages, resources.TreeFonts} {
		names, err := resources.List(tree)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s/\n", tree)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, cloudpdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, cloudpdf.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{assets.DefaultStyleName})
	case errors.Is(err, cloudpdf.ErrExtraction):
		return hints.ForTargetDirectory()
	}
	return ""
}
