package indexer

import (
	"time"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// ProcessingStats tracks statistics about an extraction run.
type ProcessingStats struct {
	FilesDiscovered       int     `json:"files_discovered"`
	FilesExtracted        int     `json:"files_extracted"`
	FilesFailed           int     `json:"files_failed"`
	TotalElements         int     `json:"total_elements"`
	TotalImports          int     `json:"total_imports"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// fileResult is the outcome of processing one discovered file. Exactly one of
// model and err is set.
type fileResult struct {
	index int
	file  SourceFile
	model *extraction.FileModel
	err   error
}

func newProcessingStats(model *extraction.ProjectModel, elapsed time.Duration) *ProcessingStats {
	return &ProcessingStats{
		FilesDiscovered:       model.Failures.TotalCount,
		FilesExtracted:        model.Failures.SuccessfulCount,
		FilesFailed:           model.Failures.FailedCount,
		TotalElements:         model.Metrics.ElementCount,
		TotalImports:          model.Metrics.ImportCount,
		ProcessingTimeSeconds: elapsed.Seconds(),
	}
}
