// Package timing converts between beats and seconds for charts with bpm
// changes and stops.
//
// Every function expects both event lists sorted by beat with their Sec
// fields filled in, which is what Resolve produces.
package timing

import (
	"fmt"
	"sort"

	"git.lost.host/meutraa/stepchart/internal/game"
)

func validate(bpms []game.BpmChange) error {
	if len(bpms) == 0 || bpms[0].Beat != 0 {
		return ErrMissingStartingBpm
	}
	return nil
}

// segment returns the index of the last bpm change at or before beat. Beats
// before the first change use the first change.
func segment(bpms []game.BpmChange, beat float64) int {
	i := sort.Search(len(bpms), func(i int) bool { return bpms[i].Beat > beat }) - 1
	if i < 0 {
		return 0
	}
	return i
}

func segmentAtSec(bpms []game.BpmChange, sec float64) int {
	i := sort.Search(len(bpms), func(i int) bool { return bpms[i].Sec > sec }) - 1
	if i < 0 {
		return 0
	}
	return i
}

func beatToSec(beat float64, bpms []game.BpmChange, stops []game.Stop) float64 {
	b := bpms[segment(bpms, beat)]
	sec := (beat-b.Beat)/b.Bpm*60 + b.Sec
	// A stop on the target beat itself has not happened yet
	for _, s := range stops {
		if s.Beat >= beat {
			break
		}
		if s.Beat >= b.Beat {
			sec += s.Length
		}
	}
	return sec
}

func secToBeat(sec float64, bpms []game.BpmChange, stops []game.Stop) float64 {
	b := bpms[segmentAtSec(bpms, sec)]
	adjusted := sec
	for _, s := range stops {
		if s.Sec >= sec {
			break
		}
		if s.Sec < b.Sec || s.Beat < b.Beat {
			continue
		}
		elapsed := sec - s.Sec
		if elapsed > s.Length {
			elapsed = s.Length
		}
		adjusted -= elapsed
	}
	return (adjusted-b.Sec)*b.Bpm/60 + b.Beat
}

// BeatToSec returns the chart time of beat.
func BeatToSec(beat float64, bpms []game.BpmChange, stops []game.Stop) (float64, error) {
	if err := validate(bpms); nil != err {
		return 0, err
	}
	return beatToSec(beat, bpms, stops), nil
}

// SecToBeat returns the beat at chart time sec. During a stop the beat of
// the stop is returned.
func SecToBeat(sec float64, bpms []game.BpmChange, stops []game.Stop) (float64, error) {
	if err := validate(bpms); nil != err {
		return 0, err
	}
	return secToBeat(sec, bpms, stops), nil
}

// Resolve sorts copies of bpms and stops by beat and fills in their Sec.
// Each event only depends on the events before it.
func Resolve(bpms []game.BpmChange, stops []game.Stop) ([]game.BpmChange, []game.Stop, error) {
	rb := make([]game.BpmChange, len(bpms))
	copy(rb, bpms)
	rs := make([]game.Stop, len(stops))
	copy(rs, stops)

	sort.SliceStable(rb, func(i, j int) bool { return rb[i].Beat < rb[j].Beat })
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Beat < rs[j].Beat })

	if err := validate(rb); nil != err {
		return nil, nil, err
	}
	for _, b := range rb {
		if b.Bpm <= 0 {
			return nil, nil, fmt.Errorf("%w: %v at beat %v", ErrInvalidBpm, b.Bpm, b.Beat)
		}
	}
	for _, s := range rs {
		if s.Length < 0 {
			return nil, nil, fmt.Errorf("%w: %v at beat %v", ErrInvalidStop, s.Length, s.Beat)
		}
	}

	rb[0].Sec = 0
	for i := 1; i < len(rb); i++ {
		rb[i].Sec = beatToSec(rb[i].Beat, rb[:i], rs)
	}
	for i := range rs {
		rs[i].Sec = beatToSec(rs[i].Beat, rb, rs[:i])
		// Stops sharing a beat run one after another
		for j := i - 1; j >= 0 && rs[j].Beat == rs[i].Beat; j-- {
			rs[i].Sec += rs[j].Length
		}
	}
	return rb, rs, nil
}

// Model is a validated timing map for repeated conversions.
type Model struct {
	bpms  []game.BpmChange
	stops []game.Stop
}

// New validates resolved event lists, as returned by Resolve.
func New(bpms []game.BpmChange, stops []game.Stop) (*Model, error) {
	if err := validate(bpms); nil != err {
		return nil, err
	}
	return &Model{bpms: bpms, stops: stops}, nil
}

func (m *Model) BeatToSec(beat float64) float64 {
	return beatToSec(beat, m.bpms, m.stops)
}

func (m *Model) SecToBeat(sec float64) float64 {
	return secToBeat(sec, m.bpms, m.stops)
}

// BpmAt returns the tempo in effect at beat.
func (m *Model) BpmAt(beat float64) float64 {
	return m.bpms[segment(m.bpms, beat)].Bpm
}
