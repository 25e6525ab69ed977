// Package audio decodes song files and plays them through the speaker
// while keeping time for the session.
package audio

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"path"
	"strings"
	"time"

	"git.lost.host/meutraa/stepchart/internal/resource"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decode opens and decodes a resolved music file.
func Decode(u *url.URL) (beep.StreamSeekCloser, beep.Format, error) {
	name := u.Path
	if u.Fragment != "" {
		name = u.Fragment
	}
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".mp3", ".ogg", ".oga", ".wav":
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	rc, err := resource.Open(u)
	if nil != err {
		return nil, beep.Format{}, err
	}
	var s beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		s, format, err = mp3.Decode(rc)
	case ".ogg", ".oga":
		s, format, err = vorbis.Decode(rc)
	case ".wav":
		s, format, err = wav.Decode(rc)
	}
	if nil != err {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %s: %w", name, err)
	}
	return s, format, nil
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Player plays one song on the speaker.
type Player struct {
	*Clock
	streamer beep.StreamSeekCloser
	done     chan struct{}
}

// Play starts u after delay. A rate above 1 plays faster by running the
// speaker at a higher sample rate, the clock still counts music time.
func Play(u *url.URL, delay time.Duration, rate float64) (*Player, error) {
	s, format, err := Decode(u)
	if nil != err {
		return nil, err
	}
	sr := beep.SampleRate(math.Round(float64(format.SampleRate) * rate))
	if err := speaker.Init(sr, sr.N(time.Second/60)); nil != err {
		s.Close()
		return nil, fmt.Errorf("unable to open speaker: %w", err)
	}

	p := &Player{
		Clock:    NewClock(s, format, delay, speakerLock{}),
		streamer: s,
		done:     make(chan struct{}),
	}
	speaker.Play(beep.Seq(p.Clock, beep.Callback(func() {
		close(p.done)
	})))
	return p, nil
}

// Done is closed when the song has played to its end.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

func (p *Player) Close() error {
	p.Stop()
	return p.streamer.Close()
}
