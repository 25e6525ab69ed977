package game

import "net/url"

type BpmChange struct {
	Beat float64
	Bpm  float64
	Sec  float64 // Derived from the changes and stops before it
}

// Stop pauses the chart for Length real seconds without advancing the beat.
type Stop struct {
	Beat   float64
	Length float64
	Sec    float64 // Derived, the time the stop starts
}

// BgChange is a background cue from #BGCHANGES.
type BgChange struct {
	Beat      float64
	File      string
	Opacity   float64
	FadeIn    bool
	FadeOut   bool
	Effect    string
	Duration  float64
	StartTime float64
	URL       *url.URL
}

// Resource is a file referenced by the chart and where it was found.
// URL is nil when the resolver could not find the file.
type Resource struct {
	File string
	URL  *url.URL
}

type Chart struct {
	Title            string
	Subtitle         string
	Artist           string
	TitleTranslit    string
	SubtitleTranslit string
	ArtistTranslit   string
	Genre            string
	Credit           string
	Version          string // Only set for ssc

	Offset       float64
	SampleStart  float64
	SampleLength float64

	BpmChanges []BpmChange
	Stops      []Stop
	BgChanges  []BgChange

	Difficulties []Difficulty
	Notes        map[DifficultyKey][]Note

	Banner     Resource
	Background Resource
	Music      Resource
	CDTitle    Resource
	Lyrics     Resource

	// Non fatal problems found while loading, like missing resources
	Warnings []error
}

// Difficulty looks up a difficulty by key.
func (c *Chart) Difficulty(key DifficultyKey) (Difficulty, bool) {
	for _, d := range c.Difficulties {
		if d.Key() == key {
			return d, true
		}
	}
	return Difficulty{}, false
}

// Counts returns the number of taps (including hold/roll heads), holds and
// mines for a difficulty.
func (c *Chart) Counts(key DifficultyKey) (notes, holds, mines int) {
	for i := range c.Notes[key] {
		switch c.Notes[key][i].Type {
		case Tap:
			notes++
		case HoldStart, RollStart:
			notes++
			holds++
		case Mine:
			mines++
		case HoldEnd:
		}
	}
	return notes, holds, mines
}
