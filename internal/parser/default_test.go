package parser_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/resource"
	"git.lost.host/meutraa/stepchart/internal/testdata"
)

const epsilon = 1e-9

type expectedNote struct {
	Type   game.NoteType
	Column uint8
	Beat   float64
	Sec    float64
	SecEnd float64
}

var hardNotes = []expectedNote{
	{game.Tap, 0, 0, 0, 0},
	{game.Tap, 1, 1, 0.5, 0},
	{game.Tap, 2, 2, 1, 0},
	{game.Tap, 3, 3, 1.5, 0},
	{game.HoldStart, 0, 4, 2, 4},
	{game.Mine, 1, 7, 4.5, 0},
	{game.Tap, 0, 8, 5, 0},
	{game.Tap, 3, 8, 5, 0},
	{game.RollStart, 1, 9, 5.5, 6.5},
	{game.Tap, 2, 10, 6, 0},
	{game.Tap, 3, 11.5, 6.75, 0},
	{game.Tap, 0, 12, 7, 0},
	{game.Tap, 1, 12 + 1.0/3, 7 + 1.0/6, 0},
	{game.Tap, 2, 14, 8, 0},
	{game.Tap, 0, 16, 9, 0},
	{game.Tap, 3, 18, 9.5, 0},
}

func checkHardNotes(t *testing.T, notes []game.Note) {
	t.Helper()
	if len(notes) != len(hardNotes) {
		t.Fatalf("expected %d notes, got %d", len(hardNotes), len(notes))
	}
	for i, e := range hardNotes {
		n := notes[i]
		if n.Type != e.Type || n.Column != e.Column ||
			math.Abs(n.Beat-e.Beat) > epsilon ||
			math.Abs(n.Sec-e.Sec) > epsilon ||
			math.Abs(n.SecEnd-e.SecEnd) > epsilon {
			t.Log("Note    ", i, n)
			t.Log("Expected", e)
			t.Fail()
		}
	}
}

func parse(t *testing.T, text string) *game.Chart {
	t.Helper()
	var p parser.DefaultParser
	chart, err := p.Parse(text, testdata.Resolver())
	if nil != err {
		t.Fatalf("unable to parse chart: %v", err)
	}
	return chart
}

func TestParseSM(t *testing.T) {
	chart := parse(t, testdata.SM)

	if chart.Title != "Test Song" || chart.Subtitle != "(Extended)" || chart.Artist != "Somebody" || chart.Credit != "stepchart" {
		t.Errorf("unexpected metadata %q %q %q %q", chart.Title, chart.Subtitle, chart.Artist, chart.Credit)
	}
	if chart.Offset != -0.05 || chart.SampleStart != 10.5 || chart.SampleLength != 12 {
		t.Errorf("unexpected offset/sample %v %v %v", chart.Offset, chart.SampleStart, chart.SampleLength)
	}
	if len(chart.BpmChanges) != 2 || chart.BpmChanges[1].Sec != 9 {
		t.Errorf("unexpected bpm changes %+v", chart.BpmChanges)
	}
	if len(chart.Stops) != 1 || chart.Stops[0].Sec != 2 || chart.Stops[0].Length != 1 {
		t.Errorf("unexpected stops %+v", chart.Stops)
	}

	// dance-double is skipped
	if len(chart.Difficulties) != 2 {
		t.Fatalf("expected 2 difficulties, got %+v", chart.Difficulties)
	}
	hard := chart.Difficulties[0]
	if hard.Key() != testdata.HardKey || hard.Name != "Hard" || hard.Description != "Somebody" || hard.Radar != "0.5,0.4,0.1,0.0,0.2" {
		t.Errorf("unexpected difficulty %+v", hard)
	}
	checkHardNotes(t, chart.Notes[testdata.HardKey])

	easy := chart.Notes[testdata.EasyKey]
	if len(easy) != 2 || easy[1].Column != 3 || easy[1].Sec != 4 {
		t.Errorf("unexpected easy notes %+v", easy)
	}

	hold := chart.Notes[testdata.HardKey][4]
	if hold.BeatEnd != 6 || hold.BeatLength != 2 || hold.SecLength != 2 {
		t.Errorf("hold not back filled: %+v", hold)
	}

	notes, holds, mines := chart.Counts(testdata.HardKey)
	if notes != 15 || holds != 2 || mines != 1 {
		t.Errorf("unexpected counts %v %v %v", notes, holds, mines)
	}
}

func TestParseSSCMatchesSM(t *testing.T) {
	sm := parse(t, testdata.SM)
	ssc := parse(t, testdata.SSC)

	if ssc.Version != "0.83" {
		t.Errorf("expected version 0.83, got %q", ssc.Version)
	}
	if ssc.Title != sm.Title || ssc.Offset != sm.Offset || len(ssc.Difficulties) != len(sm.Difficulties) {
		t.Error("ssc header differs from sm")
	}
	for _, d := range sm.Difficulties {
		a, b := sm.Notes[d.Key()], ssc.Notes[d.Key()]
		if len(a) != len(b) {
			t.Fatalf("%s: %d notes in sm, %d in ssc", d.Key(), len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s note %d: sm %+v ssc %+v", d.Key(), i, a[i], b[i])
			}
		}
	}
	checkHardNotes(t, ssc.Notes[testdata.HardKey])
}

func TestResources(t *testing.T) {
	chart := parse(t, testdata.SM)
	if chart.Music.File != "song.ogg" || nil == chart.Music.URL || chart.Music.URL.Path != "/songs/test/song.ogg" {
		t.Errorf("music not resolved: %+v", chart.Music)
	}
	if chart.Banner.File != "banner.png" || nil != chart.Banner.URL {
		t.Errorf("banner should not resolve: %+v", chart.Banner)
	}
	if len(chart.Warnings) != 1 {
		t.Fatalf("expected a single warning, got %v", chart.Warnings)
	}
	var rerr *resource.Error
	if !errors.As(chart.Warnings[0], &rerr) || rerr.Tag != "#BANNER" {
		t.Errorf("unexpected warning %v", chart.Warnings[0])
	}

	if len(chart.BgChanges) != 1 {
		t.Fatalf("short bg change should be dropped: %+v", chart.BgChanges)
	}
	bg := chart.BgChanges[0]
	if bg.File != "bg.png" || bg.Opacity != 1 || !bg.FadeIn || bg.FadeOut || bg.Effect != "1" || nil == bg.URL {
		t.Errorf("unexpected bg change %+v", bg)
	}
}

func TestNilResolver(t *testing.T) {
	var p parser.DefaultParser
	chart, err := p.Parse(testdata.SM, nil)
	if nil != err {
		t.Fatal(err)
	}
	if len(chart.Warnings) != 4 {
		t.Errorf("expected every resource to be missing, got %v", chart.Warnings)
	}
}

func chartWith(bpms, stops, rows string) string {
	return "#TITLE:t;#BPMS:" + bpms + ";#STOPS:" + stops + ";#NOTES:dance-single:::1::" + rows + ";"
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		beat float64
		sec  float64
	}{
		{"one measure in", chartWith("0.000=120.000", "", "0000000000000000,1000000000000000"), 4, 2},
		{"after a stop", chartWith("0.000=120.000", "4.000=1.000", "0000,0000,1000"), 8, 5},
	}
	for _, test := range tests {
		chart := parse(t, test.text)
		notes := chart.Notes["dance-single1"]
		if len(notes) != 1 {
			t.Fatalf("%s: expected 1 note, got %d", test.name, len(notes))
		}
		if notes[0].Beat != test.beat || math.Abs(notes[0].Sec-test.sec) > epsilon {
			t.Errorf("%s: note at beat %v sec %v, want beat %v sec %v", test.name, notes[0].Beat, notes[0].Sec, test.beat, test.sec)
		}
	}
}

var failures = []struct {
	name string
	text string
	err  error
}{
	{"bpms not at zero", chartWith("1.000=120.000", "", "1000"), parser.ErrMissingStartingBpm},
	{"no bpms", "#TITLE:t;#NOTES:dance-single:::1::1000;", parser.ErrMissingStartingBpm},
	{"row length", chartWith("0=120", "", "1000,100"), parser.ErrRowLength},
	{"row length with 5 characters", chartWith("0=120", "", "10000"), parser.ErrRowLength},
	{"hold end without head", chartWith("0=120", "", "0000,0300"), parser.ErrUnmatchedHoldEnd},
	{"hold opened twice", chartWith("0=120", "", "2000,2000,3000"), parser.ErrHoldAlreadyOpen},
	{"roll over hold", chartWith("0=120", "", "2000,4000,3000"), parser.ErrHoldAlreadyOpen},
	{"unknown character", chartWith("0=120", "", "1000,00K0"), parser.ErrUnknownNoteChar},
	{"lift note", chartWith("0=120", "", "L000"), parser.ErrUnknownNoteChar},
	{"unclosed hold", chartWith("0=120", "", "2000,0000"), parser.ErrUnclosedHold},
	{"bad bpm pair", chartWith("0=120=4", "", "1000"), parser.ErrMalformedDirective},
	{"bad bpm number", chartWith("0=fast", "", "1000"), parser.ErrMalformedDirective},
	{"short notes", "#BPMS:0=120;#NOTES:dance-single:1000;", parser.ErrMalformedDirective},
	{"bad offset", "#OFFSET:soon;" + chartWith("0=120", "", "1000"), parser.ErrMalformedDirective},
	{"bad meter", "#VERSION:0.83;#BPMS:0=120;#NOTEDATA:;#STEPSTYPE:dance-single;#METER:hard;#NOTES:1000;", parser.ErrMalformedDirective},
}

func TestParseFailures(t *testing.T) {
	var p parser.DefaultParser
	for _, test := range failures {
		chart, err := p.Parse(test.text, nil)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.name, test.err, err)
		}
		if nil != chart {
			t.Errorf("%s: failed parse should not return a chart", test.name)
		}
		var pe *parser.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected a *ParseError, got %T", test.name, err)
		}
	}
}

func TestUnknownCharacterLocation(t *testing.T) {
	var p parser.DefaultParser
	_, err := p.Parse(chartWith("0=120", "", "1000,0000000000K0"), nil)
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Measure != 1 || pe.Row != 2 || pe.Column != 2 || pe.Char != 'K' || pe.Difficulty != "dance-single1" {
		t.Errorf("wrong location %+v", pe)
	}
	if !strings.Contains(pe.Error(), "'K'") || !strings.Contains(pe.Error(), "measure 1 row 2") {
		t.Errorf("message should name the character and position: %v", pe)
	}
}

func TestDuplicateDifficultyLastWins(t *testing.T) {
	text := "#BPMS:0=120;" +
		"#NOTES:dance-single::Hard:9::1000;" +
		"#NOTES:dance-single::Challenge:9::0001,1000;"
	chart := parse(t, text)
	if len(chart.Difficulties) != 1 {
		t.Fatalf("expected the duplicate to replace the first, got %+v", chart.Difficulties)
	}
	if chart.Difficulties[0].Name != "Challenge" {
		t.Errorf("expected the last chart to win, got %q", chart.Difficulties[0].Name)
	}
	if notes := chart.Notes["dance-single9"]; len(notes) != 2 || notes[0].Column != 3 {
		t.Errorf("unexpected notes %+v", notes)
	}
}

func TestEmptyChart(t *testing.T) {
	chart := parse(t, "#BPMS:0=120;#NOTES:dance-single::Beginner:1::;")
	if notes, ok := chart.Notes["dance-single1"]; !ok || len(notes) != 0 {
		t.Errorf("expected an empty note list, got %v %v", notes, ok)
	}
}
