package parser

import (
	"strings"
)

type directive struct {
	Tag   string // Including the leading #, like #BPMS
	Value string
}

// tokenize splits chart text into #TAG:value; directives. Line comments and
// newlines are removed first, so values can span lines.
func tokenize(text string) []directive {
	var b strings.Builder
	b.Grow(len(text))
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(strings.TrimRight(line, "\r"))
	}

	directives := []directive{}
	for _, block := range strings.Split(b.String(), ";") {
		// Anything before the # is junk, a byte order mark for example
		i := strings.IndexByte(block, '#')
		if i < 0 {
			continue
		}
		tag, value, _ := strings.Cut(block[i:], ":")
		tag = strings.TrimSpace(tag)
		if tag == "#" {
			continue
		}
		directives = append(directives, directive{Tag: tag, Value: strings.TrimSpace(value)})
	}
	return directives
}

// Dialect is the on-disk chart format.
type Dialect string

const (
	SM  Dialect = "sm"
	SSC Dialect = "ssc"
)

func detect(directives []directive) Dialect {
	for _, d := range directives {
		if d.Tag == "#VERSION" {
			return SSC
		}
	}
	return SM
}

// Detect reports which dialect text is written in.
func Detect(text string) Dialect {
	return detect(tokenize(text))
}
