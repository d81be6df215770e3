package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/cortex-extract/internal/config"
	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
	"github.com/mvp-joe/cortex-extract/internal/manifest"
)

// Extractor turns Rust sources into extraction models.
type Extractor interface {
	// ExtractProject discovers, parses and aggregates every source file under root.
	// Per-file failures are reported in the model; a *FatalError aborts the run.
	ExtractProject(ctx context.Context, root string) (*extraction.ProjectModel, error)

	// ExtractFile extracts a single file. Failures are returned as *FileError.
	ExtractFile(ctx context.Context, path string) (*extraction.FileModel, error)
}

// Option configures an Extractor.
type Option func(*extractor)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *extractor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithProgress sets the progress reporter. Defaults to a no-op reporter.
func WithProgress(progress ProgressReporter) Option {
	return func(x *extractor) {
		if progress != nil {
			x.progress = progress
		}
	}
}

// WithClock overrides the source of ProjectModel.ExtractedAt.
func WithClock(now func() time.Time) Option {
	return func(x *extractor) {
		if now != nil {
			x.now = now
		}
	}
}

// extractor implements Extractor. It holds no per-run state, so one instance may
// run several extractions concurrently.
type extractor struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress ProgressReporter
	now      func() time.Time
}

// New creates an Extractor. A nil cfg uses config.Default(). An invalid cfg
// returns a *FatalError of kind ConfigInvalid.
func New(cfg *config.Config, opts ...Option) (Extractor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, &FatalError{Kind: FatalConfigInvalid, Err: fmt.Errorf("%w: %w", ErrInvalidConfig, err)}
	}

	x := &extractor{
		cfg:      cfg,
		logger:   slog.Default(),
		progress: &NoOpProgressReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// ExtractProject is a convenience wrapper around New(cfg).ExtractProject.
func ExtractProject(ctx context.Context, root string, cfg *config.Config) (*extraction.ProjectModel, error) {
	x, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return x.ExtractProject(ctx, root)
}

// ExtractFile is a convenience wrapper around New(cfg).ExtractFile.
func ExtractFile(ctx context.Context, path string, cfg *config.Config) (*extraction.FileModel, error) {
	x, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return x.ExtractFile(ctx, path)
}

// ExtractProject implements Extractor.
func (x *extractor) ExtractProject(ctx context.Context, root string) (*extraction.ProjectModel, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fatal(FatalInvalidRoot, ErrInvalidRoot, "%s: %v", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fatal(FatalInvalidRoot, ErrInvalidRoot, "%s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, fatal(FatalInvalidRoot, ErrInvalidRoot, "%s is not a directory", root)
	}

	logger := x.logger.With("root", absRoot)

	// Discovery
	x.progress.OnDiscoveryStart()
	discovery, err := NewFileDiscovery(absRoot, x.cfg.Paths, x.cfg.Extraction.FollowSymlinks, logger)
	if err != nil {
		return nil, &FatalError{Kind: FatalConfigInvalid, Err: fmt.Errorf("%w: %w", ErrInvalidConfig, err)}
	}
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fatal(FatalInvalidRoot, ErrInvalidRoot, "%s: %v", root, err)
	}
	x.progress.OnDiscoveryComplete(len(files))
	logger.Info("discovered files", "count", len(files))

	if len(files) == 0 {
		return nil, fatal(FatalNoFilesDiscovered, ErrNoFilesDiscovered, "no files under %s match the include patterns", root)
	}

	// Project metadata
	cargo, err := manifest.Load(absRoot)
	if err != nil {
		logger.Warn("ignoring unreadable manifest", "error", err)
	}
	project := cargo.Info(absRoot, x.cfg.Extraction.ParseDependencies)

	// Parse and extract
	proc := NewProcessor(NewParser(x.cfg.Extraction), x.cfg.Extraction.Workers, x.progress, logger)
	results, err := proc.ProcessFiles(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	for _, res := range results {
		if res.err != nil {
			logger.Warn("skipping file", "error", res.err)
		}
	}

	model, err := aggregate(project, results, x.now().UTC())
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	logger.Info("extraction complete",
		"files", model.Failures.SuccessfulCount,
		"failed", model.Failures.FailedCount,
		"elements", model.Metrics.ElementCount,
		"duration", elapsed)
	x.progress.OnComplete(newProcessingStats(model, elapsed))

	return model, nil
}

// ExtractFile implements Extractor. The path is used as given for the model's
// relative path and id seed.
func (x *extractor) ExtractFile(ctx context.Context, path string) (*extraction.FileModel, error) {
	file := SourceFile{
		Path:    path,
		RelPath: filepath.ToSlash(filepath.Clean(path)),
	}
	if abs, err := filepath.Abs(path); err == nil {
		file.Path = abs
	}
	return NewParser(x.cfg.Extraction).ParseFile(ctx, file)
}
