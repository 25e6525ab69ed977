package input

import (
	"testing"

	"git.lost.host/meutraa/stepchart/internal/game"
)

func TestHoldActivation(t *testing.T) {
	hold := &game.Note{Type: game.HoldStart, Column: 2, Sec: 1, SecEnd: 2}
	tr := NewTracker(0.2)

	if nil != tr.Active(2) {
		t.Log("nothing is bound yet")
		t.Fail()
	}
	tr.Press(2, 1)
	tr.Bind(hold)
	if tr.Active(2) != hold {
		t.Log("a held column keeps its hold alive")
		t.Fail()
	}
	if nil != tr.Active(1) {
		t.Log("other columns are not active")
		t.Fail()
	}
	tr.Release(2, 1.5)
	if nil != tr.Active(2) {
		t.Log("released hold is still active")
		t.Fail()
	}
	if r := tr.ReleasedAt(2); r != 1.5 {
		t.Log("hold released at", r)
		t.Fail()
	}
	tr.Press(2, 1.6)
	tr.Expire(1.8)
	if r := tr.ReleasedAt(2); r != 1.8 {
		t.Log("a held column is not released yet, got", r)
		t.Fail()
	}
	tr.Expire(2.1)
	if nil != tr.Active(2) {
		t.Log("ended hold is still active")
		t.Fail()
	}
}

func TestRollActivation(t *testing.T) {
	roll := &game.Note{Type: game.RollStart, Column: 0, Sec: 1, SecEnd: 3}
	tr := NewTracker(0.2)
	tr.Press(0, 1)
	tr.Bind(roll)
	tr.Release(0, 1.05)

	cases := map[float64]bool{
		1.1:  true,
		1.19: true,
		1.3:  false,
	}
	for now, active := range cases {
		tr.Expire(now)
		if (tr.Active(0) == roll) != active {
			t.Log("roll at", now, "expected active", active)
			t.Fail()
		}
	}

	if r := tr.ReleasedAt(0); r != 1.2 {
		t.Log("roll should lapse one window after its last press, got", r)
		t.Fail()
	}

	tr.Apply(Event{Column: 0, Pressed: true, At: 1.35})
	tr.Expire(1.4)
	if tr.Active(0) != roll {
		t.Log("pressing again revives the roll")
		t.Fail()
	}

	tr.Apply(Event{Column: 0, Repeat: true, At: 1.5})
	tr.Expire(1.65)
	if tr.Active(0) != roll || tr.ReleasedAt(0) != 1.7 {
		t.Log("a key repeat keeps the roll alive")
		t.Fail()
	}
	tr.Expire(3.1)
	if nil != tr.Active(0) {
		t.Log("ended roll is still active")
		t.Fail()
	}
}

func TestBindIgnoresTaps(t *testing.T) {
	tr := NewTracker(0.2)
	tr.Press(1, 0)
	tr.Bind(&game.Note{Type: game.Tap, Column: 1})
	if nil != tr.Active(1) {
		t.Log("taps are never active")
		t.Fail()
	}
	if !tr.Down(1) || tr.Down(0) || tr.Down(9) {
		t.Log("down state is wrong")
		t.Fail()
	}
	tr.Reset()
	if tr.Down(1) || tr.RollWindow != 0.2 {
		t.Log("reset should clear columns but keep the roll window")
		t.Fail()
	}
}
