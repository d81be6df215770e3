package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cortex-extract/internal/config"
	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// Test Plan for Processor:
// - Empty input produces empty results
// - Results keep input order regardless of completion order
// - A failing file is reported without stopping the others
// - Progress callbacks fire once per file from the collecting goroutine
// - Worker count defaults to the CPU count and caps concurrency
// - Context cancellation aborts processing with the context error

// recordingProgress counts callbacks. It is only called from one goroutine, the
// mutex guards reads from the test.
type recordingProgress struct {
	NoOpProgressReporter
	mu        sync.Mutex
	total     int
	processed []string
	failed    []string
}

func (r *recordingProgress) OnFileProcessingStart(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingProgress) OnFileProcessed(relPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, relPath)
}

func (r *recordingProgress) OnFileFailed(relPath string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, relPath)
}

// concurrencyParser tracks how many ParseFile calls run at once.
type concurrencyParser struct {
	mu      sync.Mutex
	running int
	peak    int
	release chan struct{}
}

func (p *concurrencyParser) ParseFile(ctx context.Context, file SourceFile) (*extraction.FileModel, error) {
	p.mu.Lock()
	p.running++
	p.peak = max(p.peak, p.running)
	p.mu.Unlock()

	<-p.release

	p.mu.Lock()
	p.running--
	p.mu.Unlock()
	return &extraction.FileModel{RelativePath: file.RelPath, Elements: []extraction.Element{}}, nil
}

func numberedFiles(n int) []SourceFile {
	files := make([]SourceFile, n)
	for i := range files {
		name := fmt.Sprintf("f%02d.rs", i)
		files[i] = SourceFile{Path: filepath.Join("/nonexistent", name), RelPath: name}
	}
	return files
}

func TestProcessor_ProcessFiles_EmptyList(t *testing.T) {
	t.Parallel()

	proc := NewProcessor(NewParser(config.Default().Extraction), 2, nil, nil)
	results, err := proc.ProcessFiles(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessor_ProcessFiles_MixedResults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.rs": "pub fn a() {}\n",
		"b.rs": "fn broken( {\n",
		"c.rs": "pub struct C;\n",
	})
	files := []SourceFile{
		{Path: filepath.Join(dir, "a.rs"), RelPath: "a.rs"},
		{Path: filepath.Join(dir, "b.rs"), RelPath: "b.rs"},
		{Path: filepath.Join(dir, "c.rs"), RelPath: "c.rs"},
		{Path: filepath.Join(dir, "missing.rs"), RelPath: "missing.rs"},
	}

	progress := &recordingProgress{}
	proc := NewProcessor(NewParser(config.Default().Extraction), 3, progress, nil)
	results, err := proc.ProcessFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, i, res.index)
		assert.Equal(t, files[i], res.file)
	}

	require.NotNil(t, results[0].model)
	assert.Equal(t, "a.rs", results[0].model.RelativePath)

	var ferr *FileError
	require.ErrorAs(t, results[1].err, &ferr)
	assert.Equal(t, ParseError, ferr.Kind)

	require.NotNil(t, results[2].model)

	require.ErrorAs(t, results[3].err, &ferr)
	assert.Equal(t, IoError, ferr.Kind)

	assert.Equal(t, 4, progress.total)
	assert.ElementsMatch(t, []string{"a.rs", "c.rs"}, progress.processed)
	assert.ElementsMatch(t, []string{"b.rs", "missing.rs"}, progress.failed)
}

func TestProcessor_ProcessFiles_CapsConcurrency(t *testing.T) {
	t.Parallel()

	parser := &concurrencyParser{release: make(chan struct{})}
	proc := NewProcessor(parser, 2, nil, nil)
	files := numberedFiles(8)

	go func() {
		for range files {
			parser.release <- struct{}{}
		}
	}()

	results, err := proc.ProcessFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 8)
	for i, res := range results {
		require.NotNil(t, res.model)
		assert.Equal(t, files[i].RelPath, res.model.RelativePath)
	}

	parser.mu.Lock()
	defer parser.mu.Unlock()
	assert.LessOrEqual(t, parser.peak, 2)
}

func TestProcessor_DefaultWorkers(t *testing.T) {
	t.Parallel()

	proc := NewProcessor(NewParser(config.Default().Extraction), 0, nil, nil).(*processor)
	assert.Positive(t, proc.workers)
}

func TestProcessor_ProcessFiles_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := NewProcessor(NewParser(config.Default().Extraction), 2, nil, nil)
	_, err := proc.ProcessFiles(ctx, numberedFiles(5))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
