package parser

import (
	"strings"

	"git.lost.host/meutraa/stepchart/internal/game"
)

// parseSM reads the sm dialect, where every chart is a single
// #NOTES:type:description:difficulty:rating:radar:rows; directive.
func parseSM(directives []directive) (*document, error) {
	doc := newDocument()
	for _, d := range directives {
		if d.Tag == "#NOTES" {
			fields := strings.SplitN(d.Value, ":", 6)
			if len(fields) < 6 {
				return nil, malformed(d.Tag, "expected 6 fields, got %d", len(fields))
			}
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
			}
			rating, err := parseRating(d.Tag, fields[3])
			if nil != err {
				return nil, err
			}
			doc.sections = append(doc.sections, section{
				Difficulty: game.Difficulty{
					StepType:    fields[0],
					Description: fields[1],
					Name:        fields[2],
					Rating:      rating,
					Radar:       fields[4],
				},
				Measures: strings.Split(fields[5], ","),
			})
			continue
		}
		if _, err := doc.header(d); nil != err {
			return nil, err
		}
	}
	return doc, nil
}
