package audio

import (
	"context"
	"io"
	"sync"
)

// Device is a pull-based raw sample source. Open acquires the underlying
// resource and Close releases it; Read blocks until the next frame of
// samples is available and returns io.EOF when the stream ends.
type Device interface {
	Open(ctx context.Context) error
	Read(ctx context.Context) ([]float64, error)
	SampleRate() int
	Close() error
}

// MemoryDevice replays a fixed set of frames. It backs tests and offline
// analysis of recorded sessions.
type MemoryDevice struct {
	mu     sync.Mutex
	rate   int
	frames [][]float64
	next   int
	open   bool
}

func NewMemoryDevice(rate int, frames [][]float64) *MemoryDevice {
	return &MemoryDevice{rate: rate, frames: frames}
}

func (d *MemoryDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.next = 0
	return nil
}

func (d *MemoryDevice) Read(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, io.EOF
	}
	if d.next >= len(d.frames) {
		return nil, io.EOF
	}
	frame := d.frames[d.next]
	d.next++
	return frame, nil
}

func (d *MemoryDevice) SampleRate() int { return d.rate }

// Drained reports whether every frame has been consumed.
func (d *MemoryDevice) Drained() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next >= len(d.frames)
}

func (d *MemoryDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

// FailingDevice always refuses to open. It stands in for missing or busy
// hardware in tests.
type FailingDevice struct {
	Reason string
}

func (d FailingDevice) Open(ctx context.Context) error {
	return CaptureUnavailableError{Reason: d.Reason}
}

func (d FailingDevice) Read(ctx context.Context) ([]float64, error) { return nil, io.EOF }
func (d FailingDevice) SampleRate() int                             { return DefaultSampleRate }
func (d FailingDevice) Close() error                                { return nil }
