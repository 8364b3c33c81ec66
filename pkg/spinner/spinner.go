package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Spinner struct {
	chars   []string
	delay   time.Duration
	message string
	out     io.Writer
	active  bool
	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
	width   int
}

func New(message string) *Spinner {
	return NewWithWriter(message, os.Stdout)
}

func NewWithWriter(message string, out io.Writer) *Spinner {
	return &Spinner{
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:   100 * time.Millisecond,
		message: message,
		out:     out,
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.run(s.stop, s.stopped)
}

func (s *Spinner) run(stop, stopped chan struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		line := fmt.Sprintf("%s %s", s.chars[i%len(s.chars)], s.message)
		s.width = max(s.width, len([]rune(line)))
		fmt.Fprintf(s.out, "\r%s", line)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop waits for the spinner goroutine and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop, stopped := s.stop, s.stopped
	s.mu.Unlock()

	close(stop)
	<-stopped

	s.mu.Lock()
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width+2)+"\r")
	s.mu.Unlock()
}

func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Progress shows "label (done/total)".
func (s *Spinner) Progress(label string, done, total int) {
	s.Update(fmt.Sprintf("%s (%d/%d)", label, done, total))
}
