package main

import (
	"context"
	"errors"
	"testing"

	"git.lost.host/meutraa/stepchart/internal/config"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/resource"
	"git.lost.host/meutraa/stepchart/internal/testdata"
	"git.lost.host/meutraa/stepchart/pkg/logger"
	"github.com/eiannone/keyboard"
)

func TestPickDifficulty(t *testing.T) {
	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}

	cases := []struct {
		r        rune
		expected string
		ok       bool
	}{
		{'0', string(testdata.HardKey), true},
		{'1', string(testdata.EasyKey), true},
		{'7', "", false},
		{'x', "", false},
	}
	for _, test := range cases {
		keys := make(chan keyboard.KeyEvent, 1)
		keys <- keyboard.KeyEvent{Rune: test.r}
		key, err := pickDifficulty(chart, keys)
		if test.ok != (nil == err) || string(key) != test.expected {
			t.Log("rune", string(test.r), "picked", key, err)
			t.Fail()
		}
	}

	keys := make(chan keyboard.KeyEvent)
	close(keys)
	if _, err := pickDifficulty(chart, keys); nil == err {
		t.Log("a closed keyboard should fail")
		t.Fail()
	}
}

func TestInitWithoutMusic(t *testing.T) {
	chart, err := (&parser.DefaultParser{}).Parse(testdata.SM, resource.None{})
	if nil != err {
		t.Fatal(err)
	}
	p := &Program{Config: config.New(), Log: logger.Discard()}
	err = p.Init(context.Background(), chart, testdata.HardKey, nil)
	if !errors.Is(err, ErrNoMusic) {
		t.Log("expected ErrNoMusic, got", err)
		t.Fail()
	}
	p.Deinit()
}
