package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Snapshot is a headless Renderer. It keeps the latest annotated frame as
// JPEG so HTTP clients can stream it.
type Snapshot struct {
	mu     sync.Mutex
	jpeg   []byte
	seq    uint64
	notify chan struct{}
	quit   atomic.Bool
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{notify: make(chan struct{})}
}

// Render draws the overlay and stores the frame as JPEG.
func (s *Snapshot) Render(frame *gocv.Mat, ov Overlay) error {
	Draw(frame, ov)

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	s.Publish(data)
	return nil
}

// Publish stores data as the latest frame and wakes waiting readers.
func (s *Snapshot) Publish(data []byte) {
	s.mu.Lock()
	s.jpeg = data
	s.seq++
	close(s.notify)
	s.notify = make(chan struct{})
	s.mu.Unlock()
}

// Latest returns the most recent JPEG and its sequence number, 0 if none yet.
func (s *Snapshot) Latest() ([]byte, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jpeg, s.seq
}

// Next blocks until a frame newer than after is available or ctx is done.
func (s *Snapshot) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		s.mu.Lock()
		if s.seq > after {
			data, seq := s.jpeg, s.seq
			s.mu.Unlock()
			return data, seq, nil
		}
		ch := s.notify
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-ch:
		}
	}
}

// RequestQuit makes QuitRequested return true, ending the frame loop.
func (s *Snapshot) RequestQuit() {
	s.quit.Store(true)
}

// QuitRequested reports whether RequestQuit was called.
func (s *Snapshot) QuitRequested() bool {
	return s.quit.Load()
}

// Close is a no-op.
func (s *Snapshot) Close() error {
	return nil
}

var (
	_ Renderer = (*Snapshot)(nil)
	_ Renderer = (*Window)(nil)
)
