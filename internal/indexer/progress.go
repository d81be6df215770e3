package indexer

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
// Callbacks are invoked from a single goroutine.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnFileProcessingStart is called before processing files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is extracted successfully.
	OnFileProcessed(relPath string)

	// OnFileFailed is called after each file that could not be extracted.
	OnFileFailed(relPath string, err error)

	// OnComplete is called when extraction completes successfully.
	OnComplete(stats *ProcessingStats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                      {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)          {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileProcessed(relPath string)         {}
func (n *NoOpProgressReporter) OnFileFailed(relPath string, err error) {}
func (n *NoOpProgressReporter) OnComplete(stats *ProcessingStats)      {}

