// Package simclock provides a clockwork.Clock that drifts from real time by
// a fixed rate and offset, sampled once at construction. It exists to
// reproduce, for local testing and demos, the clock skew every participant
// in the original simulation ran under: each node's clock advanced at its
// own rate ratio relative to wall time and started at its own offset, so
// that "periodic gossip every second" meant something slightly different
// node to node. Nothing in the cluster package depends on wall-clock time,
// and neither the transport scheduler nor the event logging uses this clock.
package simclock

import (
	"math"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Drifting wraps a real clockwork.Clock and reports a time that runs at
// rateRatio relative to it, offset by a fixed skew. A rateRatio of 1 and an
// offset of 0 reproduce the underlying clock exactly.
type Drifting struct {
	base      clockwork.Clock
	started   time.Time
	rateRatio float64
	offset    time.Duration

	lastMillis int64 // monotonicity fallback counter, mirrors the original's m_counter
}

// New builds a Drifting clock layered on base, sampling its rate ratio and
// offset from independent normal distributions using rnd. rateRatioMean is
// typically 1.0 and rateRatioStddev small (e.g. 1e-4) to model a clock
// running close to, but not exactly at, real time; offsetMean/offsetStddev
// are in milliseconds.
func New(base clockwork.Clock, rnd *rand.Rand, rateRatioMean, rateRatioStddev, offsetMeanMillis, offsetStddevMillis float64) *Drifting {
	return &Drifting{
		base:      base,
		started:   base.Now(),
		rateRatio: sampleNormal(rnd, rateRatioMean, rateRatioStddev),
		offset:    time.Duration(sampleNormal(rnd, offsetMeanMillis, offsetStddevMillis)) * time.Millisecond,
	}
}

// sampleNormal draws from N(mean, stddev) via the Box-Muller transform.
func sampleNormal(rnd *rand.Rand, mean, stddev float64) float64 {
	u1 := rnd.Float64()
	u2 := rnd.Float64()
	x := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return stddev*x + mean
}

// Now returns the drifted time. It is monotonic even when the sampled
// drift would otherwise run it backwards or stall it: once drift would
// produce a timestamp no later than the previous one returned, Now instead
// advances by one millisecond per call until real elapsed time catches up.
func (d *Drifting) Now() time.Time {
	elapsedMillis := float64(d.base.Now().Sub(d.started).Milliseconds())
	targetMillis := int64(elapsedMillis*d.rateRatio) + d.offset.Milliseconds()

	if targetMillis <= d.lastMillis {
		d.lastMillis++
		targetMillis = d.lastMillis
	} else {
		d.lastMillis = targetMillis
	}
	return d.started.Add(time.Duration(targetMillis) * time.Millisecond)
}

// Since is a convenience wrapper computing time elapsed, in drifted time,
// since t.
func (d *Drifting) Since(t time.Time) time.Duration { return d.Now().Sub(t) }

// Sleep and After/NewTicker/NewTimer delegate to the underlying clock: this
// type only skews what Now reports, it does not slow down or speed up
// actual scheduling. A caller that needs drifted scheduling as well as
// drifted observation should compute its own deadlines from Now.
func (d *Drifting) Sleep(dur time.Duration)             { d.base.Sleep(dur) }
func (d *Drifting) After(dur time.Duration) <-chan time.Time { return d.base.After(dur) }
func (d *Drifting) NewTicker(dur time.Duration) clockwork.Ticker {
	return d.base.NewTicker(dur)
}
func (d *Drifting) NewTimer(dur time.Duration) clockwork.Timer {
	return d.base.NewTimer(dur)
}
func (d *Drifting) AfterFunc(dur time.Duration, f func()) clockwork.Timer {
	return d.base.AfterFunc(dur, f)
}
