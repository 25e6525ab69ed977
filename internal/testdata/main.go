// Package testdata holds chart fixtures shared by the package tests.
//
// The hard chart of SM and SSC describes the same 16 notes. With 120 bpm,
// a 1 second stop at beat 4 and 240 bpm from beat 16 they land at:
//
//	 #  type  col  beat      sec
//	 0  tap   0    0         0
//	 1  tap   1    1         0.5
//	 2  tap   2    2         1
//	 3  tap   3    3         1.5
//	 4  hold  0    4 -> 6    2 -> 4
//	 5  mine  1    7         4.5
//	 6  tap   0    8         5
//	 7  tap   3    8         5
//	 8  roll  1    9 -> 11   5.5 -> 6.5
//	 9  tap   2    10        6
//	10  tap   3    11.5      6.75
//	11  tap   0    12        7
//	12  tap   1    12+1/3    7+1/6
//	13  tap   2    14        8
//	14  tap   0    16        9
//	15  tap   3    18        9.5
package testdata

import (
	"net/url"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/resource"
)

const (
	HardKey game.DifficultyKey = "dance-single9"
	EasyKey game.DifficultyKey = "dance-single3"
)

const hardRows = `
1000
0100
0010
0001
,
2000
0000
3000
0M00
,
1001
0000
0400
0000
0010
0000
0300
0001
,
1000
0100
0000
0000
0000
0000
0010
0000
0000
0000
0000
0000
,
1000
0000
0001
0000
`

const easyRows = `
1000
0000
0000
0000
,
0000
0000
0001
0000
`

const SM = `#TITLE:Test Song;
#SUBTITLE:(Extended);
#ARTIST:Somebody;
#CREDIT:stepchart;
#MUSIC:song.ogg;
#BANNER:banner.png;
#BACKGROUND:bg.png;
#OFFSET:-0.050;
#SAMPLESTART:10.500;
#SAMPLELENGTH:12.000;
#BPMS:0.000=120.000,
16.000=240.000;
#STOPS:4.000=1.000;
#BGCHANGES:0.000=bg.png=1.000=1=0=1,
8.000=short=1;
// The hard chart
#NOTES:
     dance-single:
     Somebody:
     Hard:
     9:
     0.5,0.4,0.1,0.0,0.2:
` + hardRows + `;
#NOTES:
     dance-double:
     Somebody:
     Hard:
     9:
     0,0,0,0,0:
10000000
00000000
00000001
00000000
;
#NOTES:
     dance-single:
     :
     Easy:
     3:
     0,0,0,0,0:
` + easyRows + `;
`

const SSC = `#VERSION:0.83;
#TITLE:Test Song;
#SUBTITLE:(Extended);
#ARTIST:Somebody;
#CREDIT:stepchart;
#MUSIC:song.ogg;
#BANNER:banner.png;
#BACKGROUND:bg.png;
#OFFSET:-0.050;
#SAMPLESTART:10.500;
#SAMPLELENGTH:12.000;
#BPMS:0.000=120.000,16.000=240.000;
#STOPS:4.000=1.000;
#BGCHANGES:0.000=bg.png=1.000=1=0=1,8.000=short=1;

//---------------dance-single - Somebody----------------
#NOTEDATA:;
#CHARTNAME:;
#STEPSTYPE:dance-single;
#DESCRIPTION:Somebody;
#DIFFICULTY:Hard;
#METER:9;
#RADARVALUES:0.5,0.4,0.1,0.0,0.2;
#NOTES:
` + hardRows + `;

//---------------dance-single - ----------------
#NOTEDATA:;
#STEPSTYPE:dance-single;
#DIFFICULTY:Easy;
#METER:3;
#NOTES:
` + easyRows + `;
`

// Resolver finds the music and background of the fixtures, but not the
// banner.
func Resolver() resource.Resolver {
	return resource.Map{
		"song.ogg": &url.URL{Scheme: "file", Path: "/songs/test/song.ogg"},
		"bg.png":   &url.URL{Scheme: "file", Path: "/songs/test/bg.png"},
	}
}

// GetChart parses the SM fixture.
func GetChart() (*game.Chart, error) {
	var p parser.DefaultParser
	return p.Parse(SM, Resolver())
}
