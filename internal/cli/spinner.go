package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line while a render runs. It stops on its own
// when ctx is cancelled.
type spinner struct {
	w    io.Writer
	quit chan struct{}
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far
}

// startSpinner draws message on w until stop is called.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	s := &spinner{
		w:       w,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		message: message,
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
			s.mu.Lock()
			line := styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]) + " " + StyleDim.Render(s.message)
			s.width = max(s.width, lipgloss.Width(line))
			fmt.Fprint(s.w, "\r"+line)
			s.mu.Unlock()
		}
	}
}

// update replaces the message shown from the next frame on.
func (s *spinner) update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// stop ends the animation and clears the line. Later calls do nothing.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// fail stops the spinner and prints message as an error line.
func (s *spinner) fail(message string) {
	s.stop()
	printError("%s", message)
}
