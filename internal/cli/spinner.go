package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// progressOut receives spinner frames. It is kept apart from stdout so that
// piped command output stays clean.
var progressOut io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line with the elapsed time until it is stopped
// or its context ends.
type spinner struct {
	label   string
	out     io.Writer
	started time.Time
	quit    chan struct{}
	exited  chan struct{}
	once    sync.Once

	mu    sync.Mutex
	width int // widest line written, for clearing
}

// startSpinner draws label on progressOut until Stop, Fail, or ctx is done.
func startSpinner(ctx context.Context, label string) *spinner {
	s := &spinner{
		label:   label,
		out:     progressOut,
		started: time.Now(),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.exited)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-t.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	elapsed := time.Since(s.started).Truncate(100 * time.Millisecond)
	plain := fmt.Sprintf("%s %s %s", frame, s.label, elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(plain))
	fmt.Fprintf(s.out, "\r%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.label), StyleDim.Render(elapsed.String()))
}

// Stop ends the animation and erases the status line. It is safe to call
// more than once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.exited

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// Fail stops the spinner and reports msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
