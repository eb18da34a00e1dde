// Package queue implements a fixed-capacity sample queue that overwrites its
// oldest entry once full.
package queue

import (
	"errors"
	"fmt"
)

const (
	// MaxSample bounds the magnitude of a stored sample.
	MaxSample = 1 << 20
	// MaxCapacity bounds the number of samples a queue may hold.
	MaxCapacity = 1 << 14
)

var (
	ErrZeroCapacity    = errors.New("queue: capacity is zero")
	ErrInvalidCapacity = errors.New("queue: invalid capacity")
	ErrIndexOutOfRange = errors.New("queue: index out of range")
	ErrSampleRange     = errors.New("queue: sample out of range")
)

// Queue is a circular buffer of samples ordered oldest to newest.
// It is not safe for concurrent use.
type Queue struct {
	buf   []int64
	start int // position of the oldest sample
	count int
}

// New creates a queue with room for capacity samples. A zero capacity is
// allowed but the queue must be resized before the first Write.
func New(capacity int) (*Queue, error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	return &Queue{buf: make([]int64, capacity)}, nil
}

func checkCapacity(n int) error {
	if n < 0 || n > MaxCapacity {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidCapacity, n, MaxCapacity)
	}
	return nil
}

// Len returns the number of stored samples.
func (q *Queue) Len() int { return q.count }

// Cap returns the configured capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Write appends v as the newest sample, evicting the oldest one when full.
func (q *Queue) Write(v int64) error {
	if len(q.buf) == 0 {
		return ErrZeroCapacity
	}
	if v > MaxSample || v < -MaxSample {
		return fmt.Errorf("%w: %d", ErrSampleRange, v)
	}
	if q.count < len(q.buf) {
		q.buf[(q.start+q.count)%len(q.buf)] = v
		q.count++
		return nil
	}
	// overwrite oldest
	q.buf[q.start] = v
	q.start = (q.start + 1) % len(q.buf)
	return nil
}

// Peek returns the sample at index i, where 0 is the oldest and Len()-1 the
// newest. It does not remove anything.
func (q *Queue) Peek(i int) (int64, error) {
	if i < 0 || i >= q.count {
		return 0, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, q.count)
	}
	return q.buf[(q.start+i)%len(q.buf)], nil
}

// Resize changes the capacity. Shrinking below Len drops the oldest samples
// so the most recent ones survive in order.
func (q *Queue) Resize(n int) error {
	if err := checkCapacity(n); err != nil {
		return err
	}
	keep := q.Values()
	if len(keep) > n {
		keep = keep[len(keep)-n:]
	}
	buf := make([]int64, n)
	copy(buf, keep)
	q.buf = buf
	q.start = 0
	q.count = len(keep)
	return nil
}

// Values returns a fresh slice of all samples in chronological order.
func (q *Queue) Values() []int64 {
	out := make([]int64, q.count)
	if q.count == 0 {
		return out
	}
	n := copy(out, q.buf[q.start:min(q.start+q.count, len(q.buf))])
	copy(out[n:], q.buf[:q.count-n])
	return out
}

// Clone returns an independent copy with the same capacity and samples.
func (q *Queue) Clone() *Queue {
	buf := make([]int64, len(q.buf))
	copy(buf, q.buf)
	return &Queue{buf: buf, start: q.start, count: q.count}
}

// Reset drops every sample and keeps the capacity.
func (q *Queue) Reset() {
	q.start = 0
	q.count = 0
}
