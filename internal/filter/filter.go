// Package filter computes descriptive statistics over a rolling window of
// integer samples using scaled-integer arithmetic only.
//
// A Filter is not safe for concurrent use. Callers feeding it from several
// goroutines must serialize Write together with any sequence of reads that
// has to observe one consistent window.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"signal-filter.klederson.com/internal/queue"
)

var (
	ErrEmpty               = errors.New("filter: no samples")
	ErrInsufficientSamples = errors.New("filter: need at least two samples")
	ErrNegativeSample      = errors.New("filter: negative sample")
	ErrZeroMean            = errors.New("filter: mean is zero")
)

// describeLimit caps the samples listed by String.
const describeLimit = 10

// Observer is notified synchronously after every successful Write.
type Observer interface {
	Observe(f *Filter)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f *Filter)

func (fn ObserverFunc) Observe(f *Filter) { fn(f) }

// Filter owns one sample queue and derives statistics from it on demand.
// Nothing is cached between calls.
type Filter struct {
	q        *queue.Queue
	observer Observer
}

// New creates a filter over a window of capacity samples.
func New(capacity int) (*Filter, error) {
	q, err := queue.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Filter{q: q}, nil
}

// Attach registers o as the only observer, replacing any previous one.
// A nil o detaches.
func (f *Filter) Attach(o Observer) { f.observer = o }

// Write adds a sample and then notifies the observer.
func (f *Filter) Write(v int64) error {
	if err := f.q.Write(v); err != nil {
		return err
	}
	if f.observer != nil {
		f.observer.Observe(f)
	}
	return nil
}

// Resize changes the window, dropping the oldest samples if needed.
func (f *Filter) Resize(n int) error { return f.q.Resize(n) }

// Len returns the number of samples held.
func (f *Filter) Len() int { return f.q.Len() }

// Cap returns the window size.
func (f *Filter) Cap() int { return f.q.Cap() }

// Peek returns the sample at index i, oldest first.
func (f *Filter) Peek(i int) (int64, error) { return f.q.Peek(i) }

// Values returns the window oldest to newest.
func (f *Filter) Values() []int64 { return f.q.Values() }

// Clone copies the samples. The observer stays with the original.
func (f *Filter) Clone() *Filter {
	return &Filter{q: f.q.Clone()}
}

// Reset drops all samples.
func (f *Filter) Reset() { f.q.Reset() }

// Mean returns the arithmetic mean rounded half up.
func (f *Filter) Mean() (int64, error) {
	vals := f.q.Values()
	if len(vals) == 0 {
		return 0, ErrEmpty
	}
	return RoundHalfUp(scaledMean(vals), Scale), nil
}

// Median returns the middle sample, or the rounded average of the two middle
// samples when the window holds an even number of them.
func (f *Filter) Median() (int64, error) {
	s := snapshot(f.q)
	n := len(s)
	if n == 0 {
		return 0, ErrEmpty
	}
	if n%2 == 1 {
		return s[(n-1)/2], nil
	}
	return RoundHalfUp((s[n/2-1]+s[n/2])*Scale/2, Scale), nil
}

// Mode returns, ascending, every value that occurs the maximum number of times.
func (f *Filter) Mode() ([]int64, error) {
	rs := runs(snapshot(f.q))
	if len(rs) == 0 {
		return nil, ErrEmpty
	}
	best := 0
	for _, r := range rs {
		best = max(best, r.n)
	}
	var modes []int64
	for _, r := range rs {
		if r.n == best {
			modes = append(modes, r.value)
		}
	}
	return modes, nil
}

// Min returns the smallest sample.
func (f *Filter) Min() (int64, error) {
	vals := f.q.Values()
	if len(vals) == 0 {
		return 0, ErrEmpty
	}
	return slices.Min(vals), nil
}

// Max returns the largest sample.
func (f *Filter) Max() (int64, error) {
	vals := f.q.Values()
	if len(vals) == 0 {
		return 0, ErrEmpty
	}
	return slices.Max(vals), nil
}

// StdDev returns the population standard deviation.
func (f *Filter) StdDev() (int64, error) {
	vals := f.q.Values()
	if len(vals) == 0 {
		return 0, ErrEmpty
	}
	return RoundHalfUp(scaledStdDev(vals, int64(len(vals))), Scale), nil
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
func (f *Filter) SampleStdDev() (int64, error) {
	vals := f.q.Values()
	if len(vals) <= 1 {
		return 0, fmt.Errorf("%w: have %d", ErrInsufficientSamples, len(vals))
	}
	return RoundHalfUp(scaledStdDev(vals, int64(len(vals)-1)), Scale), nil
}

// SignalPercentage returns the population standard deviation as a
// percentage of the mean. When StdDev rounds to 0 the result is 100. It is
// only defined for non-negative samples with a non-zero mean.
func (f *Filter) SignalPercentage() (int64, error) {
	vals := f.q.Values()
	if len(vals) == 0 {
		return 0, ErrEmpty
	}
	for _, v := range vals {
		if v < 0 {
			return 0, fmt.Errorf("%w: %d", ErrNegativeSample, v)
		}
	}
	m := scaledMean(vals)
	if m == 0 {
		return 0, ErrZeroMean
	}
	sd := scaledStdDev(vals, int64(len(vals)))
	if RoundHalfUp(sd, Scale) == 0 {
		return 100, nil
	}
	// sd/m in per mille, then down to whole percent.
	return RoundHalfUp(sd*1000/m, 10), nil
}

// scaledMean is the mean multiplied by Scale, truncated.
func scaledMean(vals []int64) int64 {
	var sum int64
	for _, v := range vals {
		sum += v
	}
	return sum * Scale / int64(len(vals))
}

// scaledStdDev is sqrt(sum((v-mean)^2)/div) multiplied by Scale, truncated.
// The squared deviations carry Scale squared.
func scaledStdDev(vals []int64, div int64) int64 {
	m := scaledMean(vals)
	var ss int64
	for _, v := range vals {
		d := v*Scale - m
		ss += d * d
	}
	return ISqrt(ss / div)
}

// String summarizes the window for debug logs: count, capacity and the first
// few samples.
func (f *Filter) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Filter %d/%d [", f.q.Len(), f.q.Cap())
	n := min(f.q.Len(), describeLimit)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		v, _ := f.q.Peek(i)
		fmt.Fprintf(&sb, "%d", v)
	}
	if f.q.Len() > describeLimit {
		sb.WriteString(" ...")
	}
	sb.WriteByte(']')
	return sb.String()
}
