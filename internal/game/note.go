package game

import "fmt"

// NoteType is the kind of a single cell in a note row.
//
// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine
type NoteType uint8

const (
	Tap NoteType = iota
	HoldStart
	HoldEnd
	RollStart
	Mine
)

func (t NoteType) String() string {
	switch t {
	case Tap:
		return "tap"
	case HoldStart:
		return "hold"
	case HoldEnd:
		return "hold-end"
	case RollStart:
		return "roll"
	case Mine:
		return "mine"
	}
	return fmt.Sprintf("NoteType(%d)", uint8(t))
}

// Char is the row character this type is written as.
func (t NoteType) Char() byte {
	switch t {
	case Tap:
		return '1'
	case HoldStart:
		return '2'
	case HoldEnd:
		return '3'
	case RollStart:
		return '4'
	case Mine:
		return 'M'
	}
	panic(fmt.Sprintf("game: no row character for %v", t))
}

// NoteTypeFromChar classifies a row character. Empty cells ('0') and
// unknown characters both report false; callers tell them apart.
func NoteTypeFromChar(c byte) (NoteType, bool) {
	switch c {
	case '1':
		return Tap, true
	case '2':
		return HoldStart, true
	case '3':
		return HoldEnd, true
	case '4':
		return RollStart, true
	case 'M':
		return Mine, true
	}
	return 0, false
}

// Columns is the number of columns in a dance-single chart.
const Columns = 4

type Note struct {
	Type   NoteType
	Beat   float64 // Absolute beat of the note
	Sec    float64 // Chart time in seconds the note should be hit
	Column uint8   // The chart column, [0, Columns)

	// Only set for HoldStart and RollStart, once paired with their tail
	BeatLength float64
	SecLength  float64
	BeatEnd    float64
	SecEnd     float64
}

// IsHold reports whether the note needs sustained input.
func (n *Note) IsHold() bool {
	return n.Type == HoldStart || n.Type == RollStart
}

// Judgeable reports whether pressing the note's column should be matched
// against it.
func (n *Note) Judgeable() bool {
	switch n.Type {
	case Tap, HoldStart, RollStart:
		return true
	case Mine, HoldEnd:
		return false
	}
	return false
}

// End is the time the note stops being relevant, the tail for holds.
func (n *Note) End() float64 {
	if n.IsHold() {
		return n.SecEnd
	}
	return n.Sec
}
