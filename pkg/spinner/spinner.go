// Package spinner renders a braille progress animation while a slow call is
// in flight.
package spinner

import (
	"fmt"
	"io"
	"os"
	"time"
)

// frameInterval is the delay between animation frames.
const frameInterval = 100 * time.Millisecond

// Spinner draws an animated braille arrow followed by a message. It is not
// safe for concurrent use; Start and Stop bracket the animation.
type Spinner struct {
	frames  []string
	index   int
	message string
	out     io.Writer

	done    chan struct{}
	stopped chan struct{}
}

// New creates a spinner that writes to stdout.
func New(message string) *Spinner {
	return NewTo(os.Stdout, message)
}

// NewTo creates a spinner that writes to the given writer.
func NewTo(out io.Writer, message string) *Spinner {
	// Frame sequence creates the effect of a braille arrow.
	return &Spinner{
		frames: []string{
			"⣀⣀ ",
			"⣄⣀ ",
			"⣤⣀ ",
			"⣦⣄ ",
			"⣶⣤ ",
			"⣿⣦ ",
			"⣿⣷ ",
			"⣿⣿ ",
			"⣿⣿ ",
			"⣷⣿ ",
			"⣦⣿ ",
			"⣤⣷ ",
			"⣄⣦ ",
			"⣀⣤ ",
			"⣀⣄ ",
			"⣀⣀ ",
		},
		message: message,
		out:     out,
	}
}

// Update advances the spinner to the next frame and redraws the line.
func (s *Spinner) Update() {
	// Hide cursor
	fmt.Fprint(s.out, "\033[?25l")

	fmt.Fprintf(s.out, "\r%s%s", s.frames[s.index], s.message)

	// Advance to the next frame
	s.index++
	if s.index >= len(s.frames) {
		s.index = 0
	}
}

// Cleanup clears the spinner line and shows the cursor again.
func (s *Spinner) Cleanup() {
	fmt.Fprint(s.out, "\r\033[K")
	fmt.Fprint(s.out, "\033[?25h")
}

// Start begins animating in a background goroutine. Stop must be called to
// end the animation and clear the line.
func (s *Spinner) Start() {
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go func() {
		defer close(s.stopped)

		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()

		s.Update()
		for {
			select {
			case <-s.done:
				s.Cleanup()
				return
			case <-ticker.C:
				s.Update()
			}
		}
	}()
}

// Stop ends the animation started by Start and waits until the line has been
// cleared.
func (s *Spinner) Stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	<-s.stopped
	s.done = nil
}
