package indexer

import (
	"context"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/mvp-joe/cortex-extract/internal/config"
	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
	"github.com/mvp-joe/cortex-extract/internal/indexer/parsers"
)

// Parser turns one source file into a FileModel.
type Parser interface {
	// ParseFile reads, parses and extracts a single file. Failures are always
	// returned as *FileError.
	ParseFile(ctx context.Context, file SourceFile) (*extraction.FileModel, error)
}

// rustParser implements Parser with the tree-sitter Rust grammar.
type rustParser struct {
	maxFileSize int64
	opts        parsers.Options
}

// NewParser creates a parser honoring the extraction settings of cfg.
func NewParser(cfg config.ExtractionConfig) Parser {
	return &rustParser{
		maxFileSize: cfg.MaxFileSize,
		opts: parsers.Options{
			IncludeDocs:    cfg.IncludeDocs,
			IncludePrivate: cfg.IncludePrivate,
		},
	}
}

// ParseFile implements Parser.
func (p *rustParser) ParseFile(ctx context.Context, file SourceFile) (*extraction.FileModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, ferr := p.read(file)
	if ferr != nil {
		return nil, ferr
	}

	tree, err := parsers.Parse(source)
	if err != nil {
		return nil, &FileError{Path: file.RelPath, Kind: ParseError, Err: err}
	}
	defer tree.Close()

	opts := p.opts
	opts.IDSeed = file.RelPath
	res := parsers.Extract(tree, opts)

	metrics := extraction.NewFileMetrics(res.Elements, res.Imports)
	metrics.TotalLines = res.Lines.Total
	metrics.CodeLines = res.Lines.Code
	metrics.CommentLines = res.Lines.Comment
	metrics.BlankLines = res.Lines.Blank

	return &extraction.FileModel{
		Path:         file.Path,
		RelativePath: file.RelPath,
		ContentHash:  fmt.Sprintf("%016x", xxh3.Hash(source)),
		ModuleDocs:   res.ModuleDocs,
		Elements:     res.Elements,
		Imports:      res.Imports,
		Metrics:      metrics,
	}, nil
}

// read loads the file, refusing files above the size limit before reading them.
func (p *rustParser) read(file SourceFile) ([]byte, *FileError) {
	info, err := os.Stat(file.Path)
	if err != nil {
		return nil, &FileError{Path: file.RelPath, Kind: IoError, Err: err}
	}
	if info.Size() > p.maxFileSize {
		return nil, sizeError(file.RelPath, info.Size(), p.maxFileSize)
	}

	source, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, &FileError{Path: file.RelPath, Kind: IoError, Err: err}
	}
	// The file may have grown since the stat.
	if int64(len(source)) > p.maxFileSize {
		return nil, sizeError(file.RelPath, int64(len(source)), p.maxFileSize)
	}

	return source, nil
}

func sizeError(relPath string, size, limit int64) *FileError {
	return &FileError{
		Path: relPath,
		Kind: MaxFileSizeExceeded,
		Err:  fmt.Errorf("file is %d bytes, limit is %d", size, limit),
	}
}
