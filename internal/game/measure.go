package game

// Measure is a bar line, every 4 beats.
type Measure struct {
	Index int
	Beat  float64
	Sec   float64 // The time the bar line crosses the judge line
}
