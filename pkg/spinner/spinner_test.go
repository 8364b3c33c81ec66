package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNew(t *testing.T) {
	message := "Testing spinner"
	s := New(message)

	if s.message != message {
		t.Errorf("Expected message %s, got %s", message, s.message)
	}

	if s.active {
		t.Error("Expected spinner to be inactive initially")
	}

	if len(s.chars) == 0 {
		t.Error("Expected spinner to have characters")
	}

	if s.delay == 0 {
		t.Error("Expected spinner to have delay")
	}
}

func TestSpinnerStartStop(t *testing.T) {
	out := &syncBuffer{}
	s := NewWithWriter("Test message", out)

	s.Start()
	if !s.active {
		t.Error("Expected spinner to be active after start")
	}

	time.Sleep(10 * time.Millisecond)

	s.Stop()
	if s.active {
		t.Error("Expected spinner to be inactive after stop")
	}

	if !strings.Contains(out.String(), "Test message") {
		t.Errorf("Expected message to be printed, got %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r") {
		t.Error("Expected stop to clear the line")
	}
}

func TestSpinnerDoubleStart(t *testing.T) {
	s := NewWithWriter("Test message", &syncBuffer{})

	s.Start()
	if !s.active {
		t.Error("Expected spinner to be active after first start")
	}

	s.Start()
	if !s.active {
		t.Error("Expected spinner to still be active after second start")
	}

	s.Stop()
}

func TestSpinnerDoubleStop(t *testing.T) {
	s := NewWithWriter("Test message", &syncBuffer{})

	s.Start()
	s.Stop()
	if s.active {
		t.Error("Expected spinner to be inactive after stop")
	}

	s.Stop()
	if s.active {
		t.Error("Expected spinner to still be inactive after second stop")
	}
}

func TestSpinnerRestart(t *testing.T) {
	s := NewWithWriter("Test message", &syncBuffer{})

	s.Start()
	s.Stop()
	s.Start()
	if !s.active {
		t.Error("Expected spinner to be active after restart")
	}
	s.Stop()
}

func TestSpinnerUpdate(t *testing.T) {
	s := NewWithWriter("Initial message", &syncBuffer{})
	newMessage := "Updated message"

	s.Update(newMessage)

	if s.message != newMessage {
		t.Errorf("Expected message %s, got %s", newMessage, s.message)
	}
}

func TestSpinnerProgress(t *testing.T) {
	out := &syncBuffer{}
	s := NewWithWriter("Scanning", out)

	s.Start()
	s.Progress("Scanning", 3, 10)
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Scanning (3/10)") {
		t.Errorf("Expected progress counts to be printed, got %q", out.String())
	}
}
