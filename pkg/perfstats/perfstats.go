package perfstats

import "time"

// Accumulate samples of how long something took
type TimeAccumulator struct {
	Samples int64
	Total   time.Duration
	Min     time.Duration
	Max     time.Duration
}

func (a *TimeAccumulator) Reset() {
	*a = TimeAccumulator{}
}

func (a *TimeAccumulator) AddSample(v time.Duration) {
	if a.Samples == 0 || v < a.Min {
		a.Min = v
	}
	if a.Samples == 0 || v > a.Max {
		a.Max = v
	}
	a.Samples++
	a.Total += v
}

func (a *TimeAccumulator) Average() time.Duration {
	if a.Samples == 0 {
		return 0
	}
	return time.Duration(a.Total.Nanoseconds() / a.Samples)
}

// Time how long f takes, and add it as a sample
func (a *TimeAccumulator) Time(f func()) {
	start := time.Now()
	f()
	a.AddSample(time.Since(start))
}
