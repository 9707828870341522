package logging

import (
	"os"
	"sync"
)

// RingBuffer is a fixed-size circular byte buffer safe for concurrent use.
// It implements io.Writer; once full, new writes overwrite the oldest bytes.
type RingBuffer struct {
	mu      sync.Mutex
	buf     []byte
	next    int // write position
	wrapped bool
}

// NewRingBuffer allocates a buffer of size bytes (1MB when size <= 0).
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1024 * 1024
	}
	return &RingBuffer{buf: make([]byte, size)}
}

// Write stores p, dropping the oldest data if needed. It never fails.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	size := len(rb.buf)
	if n >= size {
		copy(rb.buf, p[n-size:])
		rb.next = 0
		rb.wrapped = true
		return n, nil
	}

	written := copy(rb.buf[rb.next:], p)
	if written < n {
		copy(rb.buf, p[written:])
		rb.wrapped = true
	}
	rb.next = (rb.next + n) % size
	if rb.next == 0 {
		rb.wrapped = true
	}
	return n, nil
}

// Len returns the number of buffered bytes.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.wrapped {
		return len(rb.buf)
	}
	return rb.next
}

// Bytes returns a copy of the contents, oldest first.
func (rb *RingBuffer) Bytes() []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if !rb.wrapped {
		return append([]byte(nil), rb.buf[:rb.next]...)
	}
	out := make([]byte, 0, len(rb.buf))
	out = append(out, rb.buf[rb.next:]...)
	return append(out, rb.buf[:rb.next]...)
}

// DumpToFile writes the contents to path, oldest first.
func (rb *RingBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, rb.Bytes(), 0o644)
}
