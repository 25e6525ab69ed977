package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
)

// Clock is a streamer that plays silence for a lead in, then the music.
// It counts every sample it hands out, so its position is exactly what has
// been sent to the speaker.
type Clock struct {
	lock     sync.Locker
	streamer beep.Streamer
	format   beep.Format

	lead    int // Samples of silence before the music
	played  int
	stopped bool
}

// NewClock wraps s. lock guards the counters against the goroutine that
// pulls samples, for the speaker this is speaker.Lock.
func NewClock(s beep.Streamer, format beep.Format, delay time.Duration, lock sync.Locker) *Clock {
	return &Clock{
		lock:     lock,
		streamer: s,
		format:   format,
		lead:     format.SampleRate.N(delay),
	}
}

// Stream is called with lock held.
func (c *Clock) Stream(samples [][2]float64) (int, bool) {
	if c.stopped {
		return 0, false
	}
	n := 0
	for n < len(samples) && c.played < c.lead {
		samples[n] = [2]float64{}
		n++
		c.played++
	}
	if n == len(samples) {
		return n, true
	}
	m, ok := c.streamer.Stream(samples[n:])
	c.played += m
	n += m
	return n, ok || n > 0
}

func (c *Clock) Err() error {
	return c.streamer.Err()
}

// Position is the time in the music in seconds, negative during the lead in.
func (c *Clock) Position() float64 {
	c.lock.Lock()
	played := c.played
	c.lock.Unlock()
	return float64(played-c.lead) / float64(c.format.SampleRate)
}

// Stop ends the stream the next time it is pulled.
func (c *Clock) Stop() {
	c.lock.Lock()
	c.stopped = true
	c.lock.Unlock()
}
