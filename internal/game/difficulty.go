package game

import "strconv"

// Difficulty identifies one note list within a chart.
type Difficulty struct {
	StepType    string // dance-single
	Name        string // Beginner, Easy, Medium, Hard, Challenge, Edit
	Description string
	Rating      uint32
	Radar       string // Groove radar values, kept verbatim
}

// DifficultyKey indexes Chart.Notes.
type DifficultyKey string

func (d Difficulty) Key() DifficultyKey {
	return DifficultyKey(d.StepType + strconv.FormatUint(uint64(d.Rating), 10))
}

// StepTypeColumns maps supported step types to their column count.
var StepTypeColumns = map[string]uint8{
	"dance-single": Columns,
}
