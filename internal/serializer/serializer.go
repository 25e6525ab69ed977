// Package serializer writes charts back out in the sm dialect.
package serializer

import (
	"io"
	"math"
	"strconv"
	"strings"

	"git.lost.host/meutraa/stepchart/internal/game"
)

// Resolutions are the rows per measure a chart may be written with, from
// 4ths up to 192nds.
var Resolutions = [...]int{4, 8, 12, 16, 24, 32, 48, 64, 96, 192}

// MaxRows bounds the row count tried for a measure none of the
// Resolutions can place exactly, like quintuplets.
const MaxRows = 3840

// Cells closer than this to a row are snapped onto it
const snap = 1e-6

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// clean removes characters that would end the directive early.
func clean(s string) string {
	return strings.ReplaceAll(s, ";", "")
}

// Serialize writes chart as sm text that parses back into the same chart.
func Serialize(chart *game.Chart) string {
	var b strings.Builder
	writeChart(&b, chart)
	return b.String()
}

// Write is Serialize to a writer.
func Write(w io.Writer, chart *game.Chart) error {
	_, err := io.WriteString(w, Serialize(chart))
	return err
}

func writeChart(b *strings.Builder, c *game.Chart) {
	tag := func(name, value string) {
		b.WriteString("#")
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(clean(value))
		b.WriteString(";\n")
	}

	tag("TITLE", c.Title)
	tag("SUBTITLE", c.Subtitle)
	tag("ARTIST", c.Artist)
	tag("TITLETRANSLIT", c.TitleTranslit)
	tag("SUBTITLETRANSLIT", c.SubtitleTranslit)
	tag("ARTISTTRANSLIT", c.ArtistTranslit)
	tag("GENRE", c.Genre)
	tag("CREDIT", c.Credit)
	tag("BANNER", c.Banner.File)
	tag("BACKGROUND", c.Background.File)
	tag("LYRICSPATH", c.Lyrics.File)
	tag("CDTITLE", c.CDTitle.File)
	tag("MUSIC", c.Music.File)
	tag("OFFSET", formatFloat(c.Offset))
	tag("SAMPLESTART", formatFloat(c.SampleStart))
	tag("SAMPLELENGTH", formatFloat(c.SampleLength))

	bpms := make([]string, len(c.BpmChanges))
	for i, bpm := range c.BpmChanges {
		bpms[i] = formatFloat(bpm.Beat) + "=" + formatFloat(bpm.Bpm)
	}
	tag("BPMS", strings.Join(bpms, ",\n"))

	stops := make([]string, len(c.Stops))
	for i, s := range c.Stops {
		stops[i] = formatFloat(s.Beat) + "=" + formatFloat(s.Length)
	}
	tag("STOPS", strings.Join(stops, ",\n"))

	bgs := make([]string, len(c.BgChanges))
	for i, bg := range c.BgChanges {
		bgs[i] = strings.Join([]string{
			formatFloat(bg.Beat),
			bg.File,
			formatFloat(bg.Opacity),
			formatBool(bg.FadeIn),
			formatBool(bg.FadeOut),
			bg.Effect,
			formatFloat(bg.Duration),
			formatFloat(bg.StartTime),
		}, "=")
	}
	tag("BGCHANGES", strings.Join(bgs, ",\n"))

	for _, d := range c.Difficulties {
		b.WriteString("\n//---------------")
		b.WriteString(d.StepType)
		b.WriteString(" - ")
		b.WriteString(d.Description)
		b.WriteString("----------------\n")
		b.WriteString("#NOTES:\n")
		for _, field := range []string{
			d.StepType,
			d.Description,
			d.Name,
			strconv.FormatUint(uint64(d.Rating), 10),
			d.Radar,
		} {
			b.WriteString("     ")
			b.WriteString(clean(strings.ReplaceAll(field, ":", "")))
			b.WriteString(":\n")
		}
		writeMeasures(b, c.Notes[d.Key()])
		b.WriteString(";\n")
	}
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

type cell struct {
	beat   float64
	column uint8
	char   byte
}

func measureOf(beat float64) int {
	m := int(math.Floor(beat/4 + snap))
	if m < 0 {
		return 0
	}
	return m
}

// Resolution returns the fewest rows that place every offset, in beats from
// the start of a measure, exactly on a row. The usual Resolutions are
// preferred, then the smallest row count up to MaxRows. Offsets nothing up
// to MaxRows can place are snapped onto 192nds.
func Resolution(offsets []float64) int {
	for _, r := range Resolutions {
		if fits(offsets, r) {
			return r
		}
	}
	for r := 1; r <= MaxRows; r++ {
		if fits(offsets, r) {
			return r
		}
	}
	return Resolutions[len(Resolutions)-1]
}

func fits(offsets []float64, rows int) bool {
	for _, off := range offsets {
		row := off * float64(rows) / 4
		if math.Abs(row-math.Round(row)) > snap*float64(rows) {
			return false
		}
	}
	return true
}

func writeMeasures(b *strings.Builder, notes []game.Note) {
	cells := make([]cell, 0, len(notes))
	for _, n := range notes {
		switch n.Type {
		case game.Tap, game.Mine:
			cells = append(cells, cell{n.Beat, n.Column, n.Type.Char()})
		case game.HoldStart, game.RollStart:
			cells = append(cells, cell{n.Beat, n.Column, n.Type.Char()})
			cells = append(cells, cell{n.BeatEnd, n.Column, game.HoldEnd.Char()})
		case game.HoldEnd:
			cells = append(cells, cell{n.Beat, n.Column, n.Type.Char()})
		}
	}

	count := 1
	for _, c := range cells {
		if m := measureOf(c.beat) + 1; m > count {
			count = m
		}
	}
	byMeasure := make([][]cell, count)
	for _, c := range cells {
		m := measureOf(c.beat)
		byMeasure[m] = append(byMeasure[m], c)
	}

	for m, cs := range byMeasure {
		if m > 0 {
			b.WriteString(",\n")
		}
		offsets := make([]float64, len(cs))
		for i, c := range cs {
			offsets[i] = c.beat - float64(m*4)
		}
		rows := Resolution(offsets)
		grid := make([][game.Columns]byte, rows)
		for r := range grid {
			for col := range grid[r] {
				grid[r][col] = '0'
			}
		}
		for i, c := range cs {
			r := int(math.Round(offsets[i] * float64(rows) / 4))
			if r < 0 {
				r = 0
			} else if r >= rows {
				r = rows - 1
			}
			grid[r][c.column] = c.char
		}
		for r := range grid {
			b.Write(grid[r][:])
			b.WriteString("\n")
		}
	}
}
