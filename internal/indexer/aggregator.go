package indexer

import (
	"slices"
	"strings"
	"time"

	"github.com/mvp-joe/cortex-extract/internal/graph"
	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// aggregate merges per-file results into a ProjectModel. Files are ordered by
// relative path and failures are summarized, never dropped. It fails only when
// no file succeeded or a file's hierarchy is inconsistent.
func aggregate(project extraction.ProjectInfo, results []fileResult, extractedAt time.Time) (*extraction.ProjectModel, error) {
	files := make([]extraction.FileModel, 0, len(results))
	var errs []string

	for _, res := range results {
		if res.err != nil {
			errs = append(errs, res.err.Error())
			continue
		}
		if res.model == nil {
			continue
		}
		if err := graph.Verify(res.model.Elements); err != nil {
			return nil, fatal(FatalInvalidHierarchy, ErrInvalidHierarchy, "%s: %v", res.model.RelativePath, err)
		}
		files = append(files, *res.model)
	}

	slices.SortFunc(files, func(a, b extraction.FileModel) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	slices.Sort(errs)

	failures := extraction.PartialFailure{
		SuccessfulCount: len(files),
		FailedCount:     len(errs),
		TotalCount:      len(results),
		Errors:          errs,
	}

	if len(files) == 0 {
		return nil, fatal(FatalNoFilesParsed, ErrNoFilesParsed, "all %d files failed:\n  - %s",
			failures.TotalCount, strings.Join(errs, "\n  - "))
	}

	return &extraction.ProjectModel{
		Project:     project,
		Files:       files,
		Metrics:     extraction.NewProjectMetrics(files),
		Failures:    failures,
		ExtractedAt: extractedAt,
	}, nil
}
