package scan

// ProgressReporter provides callbacks for reporting scan progress.
// Implementations can display progress bars, log messages, or remain silent.
// Callbacks may be invoked from several goroutines at once.
type ProgressReporter interface {
	// OnScanStart is called once with the number of files to analyze.
	OnScanStart(totalFiles int)

	// OnFileAnalyzed is called after each file, successful or not.
	OnFileAnalyzed(result FileResult)

	// OnScanComplete is called when every scheduled file has finished.
	OnScanComplete(stats Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnScanStart(totalFiles int)       {}
func (NoOpProgressReporter) OnFileAnalyzed(result FileResult) {}
func (NoOpProgressReporter) OnScanComplete(stats Stats)       {}
