package speech

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Sink accepts finished sequences for synthesis.
type Sink interface {
	Speak(ctx context.Context, seq Sequence) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, seq Sequence) error

// Speak calls f.
func (f SinkFunc) Speak(ctx context.Context, seq Sequence) error {
	return f(ctx, seq)
}

// EncoderSink writes every sequence as one JSON line.
type EncoderSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoderSink returns a sink writing JSON lines to w.
func NewEncoderSink(w io.Writer) *EncoderSink {
	return &EncoderSink{w: w}
}

// Speak encodes seq and writes it followed by a newline.
func (s *EncoderSink) Speak(ctx context.Context, seq Sequence) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(seq)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("unable to write sequence: %w", err)
	}
	return nil
}
