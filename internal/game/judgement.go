package game

import "fmt"

// Judgement is the outcome of a single note, tightest first.
type Judgement uint8

const (
	Marvelous Judgement = iota
	Perfect
	Great
	Good
	Boo
	Miss
)

// JudgementCount is the number of Judgement values.
const JudgementCount = int(Miss) + 1

var judgementNames = [JudgementCount]string{
	"Marvelous",
	"Perfect",
	"Great",
	"Good",
	"Boo",
	"Miss",
}

func (j Judgement) String() string {
	if int(j) < JudgementCount {
		return judgementNames[j]
	}
	return fmt.Sprintf("Judgement(%d)", uint8(j))
}

// ParseJudgement is the inverse of String, case sensitive.
func ParseJudgement(s string) (Judgement, error) {
	for i, name := range judgementNames {
		if name == s {
			return Judgement(i), nil
		}
	}
	return 0, fmt.Errorf("unknown judgement %q", s)
}
