package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner draws a one-line progress indicator on a plain writer, for
// commands that run outside a bubbletea program. It shares its frames with
// the ui screen's spinner.
type Spinner struct {
	w     io.Writer
	style spinner.Spinner

	mu      sync.Mutex
	message string
	once    sync.Once
	stop    chan struct{}
	done    chan struct{}
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		style:   spinner.MiniDot,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins drawing until Stop is called.
func (s *Spinner) Start() {
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.style.FPS)
	defer ticker.Stop()

	frames := s.style.Frames
	for i := 0; ; i++ {
		select {
		case <-s.stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r  %s %s", StylePurple.Render(frames[i%len(frames)]), Dim(s.Message()))
		}
	}
}

// Message returns the text currently shown next to the frames.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// SetMessage replaces the text shown next to the frames.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

// Stop clears the line and waits for the drawing goroutine to exit. It must
// follow Start; repeated calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// StartSpinner starts a spinner on w and returns its stop function. When
// animate is false nothing is drawn.
func StartSpinner(w io.Writer, message string, animate bool) func() {
	if !animate {
		return func() {}
	}
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
