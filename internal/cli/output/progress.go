package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress redraws a one-line status on w until stopped. Each tick it
// writes a spinner frame followed by the text returned from status.
type Progress struct {
	w        io.Writer
	status   func() string
	interval time.Duration
	frames   []string

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewProgress creates a progress line. interval <= 0 uses 200ms.
func NewProgress(w io.Writer, interval time.Duration, status func() string) *Progress {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Progress{
		w:        w,
		status:   status,
		interval: interval,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins redrawing in a background goroutine.
func (p *Progress) Start() {
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			p.draw(p.frames[i%len(p.frames)])
			select {
			case <-p.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts redrawing and clears the line. It waits for the drawing
// goroutine and is safe to call more than once.
func (p *Progress) Stop() {
	p.once.Do(func() {
		close(p.stop)
		<-p.stopped
		p.mu.Lock()
		fmt.Fprint(p.w, "\r\033[K")
		p.mu.Unlock()
	})
}

func (p *Progress) draw(frame string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K%s %s", frame, p.status())
}

// FormatCount abbreviates large counts: 999, 1.2k, 3.4M, 5.6G.
func FormatCount(n uint64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "kMG"[exp])
}
