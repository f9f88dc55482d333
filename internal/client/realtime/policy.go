package realtime

import (
	"math"
	"math/rand/v2"
	"time"
)

const DefaultReconnectDelay = 5 * time.Second

// Policy decides the delay before reconnect attempt n (0-based count of
// consecutive failures). ok == false means stop retrying.
type Policy interface {
	Next(attempt int) (delay time.Duration, ok bool)
}

// Fixed retries forever at the same interval.
type Fixed time.Duration

var _ Policy = Fixed(0)

func (f Fixed) Next(int) (time.Duration, bool) {
	return time.Duration(f), true
}

// Exponential grows the delay by Factor per attempt up to Max, optionally
// spreading it by ±Jitter (a fraction of the delay). MaxAttempts of zero
// means unbounded.
type Exponential struct {
	Initial     time.Duration
	Max         time.Duration
	Factor      float64
	Jitter      float64
	MaxAttempts int

	rand func() float64
}

var _ Policy = (*Exponential)(nil)

func (e *Exponential) Next(attempt int) (time.Duration, bool) {
	if e.MaxAttempts > 0 && attempt >= e.MaxAttempts {
		return 0, false
	}

	factor := e.Factor
	if factor < 1 {
		factor = 2
	}

	d := float64(e.Initial) * math.Pow(factor, float64(attempt))
	if e.Max > 0 && d > float64(e.Max) {
		d = float64(e.Max)
	}

	if e.Jitter > 0 {
		r := rand.Float64
		if e.rand != nil {
			r = e.rand
		}
		d += d * e.Jitter * (2*r() - 1)
	}

	return time.Duration(max(d, 0)), true
}
