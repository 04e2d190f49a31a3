package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/codefeat/internal/scan"
)

// progressReporter shows a progress bar while files are analyzed.
type progressReporter struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// newProgressReporter returns a bar writing to w, or a no-op reporter when quiet.
func newProgressReporter(w io.Writer, quiet bool) scan.ProgressReporter {
	if quiet {
		return scan.NoOpProgressReporter{}
	}
	return &progressReporter{w: w}
}

func (p *progressReporter) OnScanStart(totalFiles int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Analyzing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

func (p *progressReporter) OnFileAnalyzed(result scan.FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *progressReporter) OnScanComplete(stats scan.Stats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
	fmt.Fprintf(p.w, "✓ Analyzed %d files in %.1fs (%d failed, %d cached)\n",
		stats.Files, stats.Duration.Seconds(), stats.Failed, stats.CacheHits)
}
