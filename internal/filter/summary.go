package filter

// Summary holds every statistic for one window at one point in time.
type Summary struct {
	Count    int
	Capacity int
	Mean     int64
	Median   int64
	Mode     []int64
	Min      int64
	Max      int64
	StdDev   int64

	// SampleStdDev is only meaningful when SampleValid is set (Count > 1).
	SampleStdDev int64
	SampleValid  bool

	// Signal is only meaningful when SignalValid is set; see SignalPercentage.
	Signal      int64
	SignalValid bool
}

// Stats computes a Summary. It fails only when the window is empty.
func (f *Filter) Stats() (Summary, error) {
	s := Summary{Count: f.q.Len(), Capacity: f.q.Cap()}
	var err error
	if s.Mean, err = f.Mean(); err != nil {
		return s, err
	}
	if s.Median, err = f.Median(); err != nil {
		return s, err
	}
	if s.Mode, err = f.Mode(); err != nil {
		return s, err
	}
	if s.Min, err = f.Min(); err != nil {
		return s, err
	}
	if s.Max, err = f.Max(); err != nil {
		return s, err
	}
	if s.StdDev, err = f.StdDev(); err != nil {
		return s, err
	}
	if sd, err := f.SampleStdDev(); err == nil {
		s.SampleStdDev, s.SampleValid = sd, true
	}
	if sig, err := f.SignalPercentage(); err == nil {
		s.Signal, s.SignalValid = sig, true
	}
	return s, nil
}
