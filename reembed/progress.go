package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how far a reembedding run has got. Batches finish
// out of order, so it only counts.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	done           int
	batches        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total chunks that writes a status
// line to writer every reportInterval chunks.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start resets the counters and starts the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.done = 0
	p.batches = 0
	p.lastReported = 0
}

// BatchDone records a stored batch of n chunks. The chunk count is capped at
// the total taken when the run started, since chunks ingested mid-run are
// reembedded too.
func (p *ProgressTracker) BatchDone(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.batches++
	p.done = min(p.done+n, p.total)
	if p.done-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.done
	}
}

// Finish prints the final line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.done = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// eta estimates the time left from the rate so far. Must be called with lock held.
func (p *ProgressTracker) eta(elapsed time.Duration) time.Duration {
	if p.done == 0 {
		return 0
	}
	perChunk := elapsed / time.Duration(p.done)
	return (perChunk * time.Duration(p.total-p.done)).Round(time.Second)
}

// report must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.done) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rReembedded %d/%d chunks (%.1f%%) in %d batches - %.1f chunks/s, eta %s",
		p.done, p.total, percentage, p.batches, rate, p.eta(elapsed))
}
