package parser

import (
	"strings"
)

// parseSSC reads the ssc dialect. The song header comes first, then each
// chart starts with #NOTEDATA and carries its own #STEPSTYPE, #DIFFICULTY,
// #METER and #NOTES. Per chart timing overrides are ignored.
func parseSSC(directives []directive) (*document, error) {
	doc := newDocument()
	var current *section
	finish := func() {
		if nil != current {
			doc.sections = append(doc.sections, *current)
			current = nil
		}
	}

	for _, d := range directives {
		if d.Tag == "#NOTEDATA" {
			finish()
			current = &section{}
			continue
		}
		if nil == current {
			if d.Tag == "#VERSION" {
				doc.chart.Version = d.Value
				continue
			}
			if _, err := doc.header(d); nil != err {
				return nil, err
			}
			continue
		}

		switch d.Tag {
		case "#STEPSTYPE":
			current.Difficulty.StepType = d.Value
		case "#DESCRIPTION":
			current.Difficulty.Description = d.Value
		case "#DIFFICULTY":
			current.Difficulty.Name = d.Value
		case "#METER":
			rating, err := parseRating(d.Tag, d.Value)
			if nil != err {
				return nil, err
			}
			current.Difficulty.Rating = rating
		case "#RADARVALUES":
			current.Difficulty.Radar = d.Value
		case "#NOTES":
			current.Measures = strings.Split(d.Value, ",")
		}
	}
	finish()
	return doc, nil
}
