package parser

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/resource"
	"git.lost.host/meutraa/stepchart/internal/timing"
)

type DefaultParser struct{}

// section is one #NOTES block before its rows are decoded.
type section struct {
	Difficulty game.Difficulty
	Measures   []string
}

// document is what a dialect front end hands to the shared back end.
type document struct {
	chart    *game.Chart
	bpms     []game.BpmChange
	stops    []game.Stop
	sections []section
	files    map[string]string // directive -> referenced file name
}

func newDocument() *document {
	return &document{
		chart: &game.Chart{Notes: map[game.DifficultyKey][]game.Note{}},
		files: map[string]string{},
	}
}

func (p *DefaultParser) Parse(text string, resolver resource.Resolver) (*game.Chart, error) {
	if nil == resolver {
		resolver = resource.None{}
	}
	directives := tokenize(text)

	var doc *document
	var err error
	switch detect(directives) {
	case SSC:
		doc, err = parseSSC(directives)
	case SM:
		doc, err = parseSM(directives)
	}
	if nil != err {
		return nil, err
	}
	return doc.build(resolver)
}

// ParseFile reads a chart from disk, resolving resources from the folder it
// is in.
func ParseFile(path string) (*game.Chart, error) {
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, err
	}
	dir, err := resource.NewDir(filepath.Dir(path))
	if nil != err {
		return nil, err
	}
	var p DefaultParser
	return p.Parse(string(data), dir)
}

// header handles the song level directives shared by both dialects. It
// reports false for tags it does not know.
func (doc *document) header(d directive) (bool, error) {
	c := doc.chart
	switch d.Tag {
	case "#TITLE":
		c.Title = d.Value
	case "#SUBTITLE":
		c.Subtitle = d.Value
	case "#ARTIST":
		c.Artist = d.Value
	case "#TITLETRANSLIT":
		c.TitleTranslit = d.Value
	case "#SUBTITLETRANSLIT":
		c.SubtitleTranslit = d.Value
	case "#ARTISTTRANSLIT":
		c.ArtistTranslit = d.Value
	case "#GENRE":
		c.Genre = d.Value
	case "#CREDIT":
		c.Credit = d.Value
	case "#OFFSET":
		return true, parseFloat(d, &c.Offset)
	case "#SAMPLESTART":
		return true, parseFloat(d, &c.SampleStart)
	case "#SAMPLELENGTH":
		return true, parseFloat(d, &c.SampleLength)
	case "#BANNER", "#BACKGROUND", "#MUSIC", "#CDTITLE", "#LYRICSPATH":
		doc.files[d.Tag] = d.Value
	case "#BPMS":
		pairs, err := parsePairs(d)
		if nil != err {
			return true, err
		}
		for _, p := range pairs {
			doc.bpms = append(doc.bpms, game.BpmChange{Beat: p[0], Bpm: p[1]})
		}
	case "#STOPS", "#FREEZES":
		pairs, err := parsePairs(d)
		if nil != err {
			return true, err
		}
		for _, p := range pairs {
			doc.stops = append(doc.stops, game.Stop{Beat: p[0], Length: p[1]})
		}
	case "#BGCHANGES":
		c.BgChanges = append(c.BgChanges, parseBgChanges(d.Value)...)
	default:
		return false, nil
	}
	return true, nil
}

func parseFloat(d directive, dst *float64) error {
	if d.Value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(d.Value, 64)
	if nil != err {
		return malformed(d.Tag, "%q is not a number", d.Value)
	}
	*dst = f
	return nil
}

// parsePairs reads a comma separated list of beat=value pairs.
func parsePairs(d directive) ([][2]float64, error) {
	pairs := [][2]float64{}
	for _, entry := range strings.Split(d.Value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "=")
		if len(parts) != 2 {
			return nil, malformed(d.Tag, "expected beat=value, got %q", entry)
		}
		var pair [2]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if nil != err {
				return nil, malformed(d.Tag, "%q is not a number", part)
			}
			pair[i] = f
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// parseBgChanges reads beat=file=opacity=fadeIn=fadeOut=effect[=duration=startTime]
// entries. Short or unreadable entries are dropped.
func parseBgChanges(value string) []game.BgChange {
	changes := []game.BgChange{}
	for _, entry := range strings.Split(value, ",") {
		fields := strings.Split(strings.TrimSpace(entry), "=")
		if len(fields) < 6 {
			continue
		}
		beat, err := strconv.ParseFloat(fields[0], 64)
		if nil != err {
			continue
		}
		change := game.BgChange{
			Beat:    beat,
			File:    fields[1],
			Opacity: lenientFloat(fields[2]),
			FadeIn:  fields[3] == "1",
			FadeOut: fields[4] == "1",
			Effect:  fields[5],
		}
		if len(fields) > 6 {
			change.Duration = lenientFloat(fields[6])
		}
		if len(fields) > 7 {
			change.StartTime = lenientFloat(fields[7])
		}
		changes = append(changes, change)
	}
	return changes
}

func lenientFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if nil != err {
		return 0
	}
	return f
}

// build resolves timing, decodes every section and looks up resources.
func (doc *document) build(resolver resource.Resolver) (*game.Chart, error) {
	c := doc.chart

	bpms, stops, err := timing.Resolve(doc.bpms, doc.stops)
	if nil != err {
		return nil, &ParseError{Err: err, Tag: "#BPMS"}
	}
	model, err := timing.New(bpms, stops)
	if nil != err {
		return nil, &ParseError{Err: err, Tag: "#BPMS"}
	}
	c.BpmChanges, c.Stops = bpms, stops

	for _, s := range doc.sections {
		if _, ok := game.StepTypeColumns[s.Difficulty.StepType]; !ok {
			continue
		}
		key := s.Difficulty.Key()
		notes, err := decodeNotes(s.Measures, model)
		if nil != err {
			if pe, ok := err.(*ParseError); ok {
				pe.Difficulty = key
			}
			return nil, err
		}
		// Later charts with the same key replace earlier ones
		if _, exists := c.Notes[key]; exists {
			for i := range c.Difficulties {
				if c.Difficulties[i].Key() == key {
					c.Difficulties[i] = s.Difficulty
				}
			}
		} else {
			c.Difficulties = append(c.Difficulties, s.Difficulty)
		}
		c.Notes[key] = notes
	}

	for _, r := range []struct {
		tag string
		dst *game.Resource
	}{
		{"#BANNER", &c.Banner},
		{"#BACKGROUND", &c.Background},
		{"#MUSIC", &c.Music},
		{"#CDTITLE", &c.CDTitle},
		{"#LYRICSPATH", &c.Lyrics},
	} {
		name := doc.files[r.tag]
		r.dst.File = name
		if name == "" {
			continue
		}
		if u, ok := resolver.Resolve(name); ok {
			r.dst.URL = u
		} else {
			c.Warnings = append(c.Warnings, &resource.Error{Tag: r.tag, File: name})
		}
	}
	for i := range c.BgChanges {
		bg := &c.BgChanges[i]
		// Names like -nosongbg- are engine directives rather than files
		if bg.File == "" || strings.HasPrefix(bg.File, "-") {
			continue
		}
		if u, ok := resolver.Resolve(bg.File); ok {
			bg.URL = u
		} else {
			c.Warnings = append(c.Warnings, &resource.Error{Tag: "#BGCHANGES", File: bg.File})
		}
	}

	return c, nil
}

func parseRating(tag, value string) (uint32, error) {
	if value == "" {
		return 0, nil
	}
	r, err := strconv.ParseUint(value, 10, 32)
	if nil != err {
		return 0, malformed(tag, "rating %q is not a whole number", value)
	}
	return uint32(r), nil
}
