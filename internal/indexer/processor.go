package indexer

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Processor runs the parser over discovered files in parallel.
type Processor interface {
	// ProcessFiles extracts every file and returns one result per input, in input
	// order. It only returns an error when ctx is cancelled.
	ProcessFiles(ctx context.Context, files []SourceFile) ([]fileResult, error)
}

// processor implements Processor interface.
type processor struct {
	parser   Parser
	workers  int
	progress ProgressReporter
	logger   *slog.Logger
}

// NewProcessor creates a new Processor instance. workers <= 0 uses one worker per CPU.
func NewProcessor(parser Parser, workers int, progress ProgressReporter, logger *slog.Logger) Processor {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &processor{
		parser:   parser,
		workers:  workers,
		progress: progress,
		logger:   logger,
	}
}

// ProcessFiles implements Processor. Workers send results over a channel to the
// calling goroutine, which owns the result slice and the progress reporter.
func (p *processor) ProcessFiles(ctx context.Context, files []SourceFile) ([]fileResult, error) {
	p.progress.OnFileProcessingStart(len(files))

	out := make(chan fileResult, p.workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var waitErr error
	go func() {
		for i, file := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out <- p.processFile(gctx, i, file)
				return nil
			})
		}
		waitErr = g.Wait()
		close(out)
	}()

	results := make([]fileResult, len(files))
	for res := range out {
		results[res.index] = res
		if res.err != nil {
			p.progress.OnFileFailed(res.file.RelPath, res.err)
			continue
		}
		p.progress.OnFileProcessed(res.file.RelPath)
	}

	if waitErr != nil {
		return nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *processor) processFile(ctx context.Context, index int, file SourceFile) fileResult {
	model, err := p.parser.ParseFile(ctx, file)
	if err != nil {
		var ferr *FileError
		if !errors.As(err, &ferr) {
			ferr = &FileError{Path: file.RelPath, Kind: IoError, Err: err}
		}
		p.logger.Debug("file failed", "path", file.RelPath, "kind", ferr.Kind, "error", ferr.Err)
		return fileResult{index: index, file: file, err: ferr}
	}

	p.logger.Debug("file extracted", "path", file.RelPath, "elements", len(model.Elements))
	return fileResult{index: index, file: file, model: model}
}
