package events

import (
	"io"
	"sync"

	"go.uber.org/zap"
)

// Sink is an append-only, ordered log. Appends always succeed from the
// caller's point of view.
type Sink interface {
	Log(line string)
}

// WriterSink writes each line followed by a newline to an io.Writer.
type WriterSink struct {
	w      io.Writer
	logger *zap.Logger
}

// NewWriterSink creates a WriterSink. Write failures are reported to logger.
func NewWriterSink(w io.Writer, logger *zap.Logger) *WriterSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WriterSink{w: w, logger: logger}
}

func (s *WriterSink) Log(line string) {
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		s.logger.Error("Failed to write event line", zap.Error(err))
	}
}

// ZapSink logs each line as the message of an info entry, the way the
// contract host records logs.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a ZapSink. A nil logger drops every line.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Log(line string) {
	s.logger.Info(line)
}

// MemorySink keeps lines in memory in append order.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Log(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

// Lines returns a copy of the recorded lines.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Reset drops every recorded line.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}
