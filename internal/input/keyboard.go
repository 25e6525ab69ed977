package input

import (
	"context"
	"time"

	"github.com/eiannone/keyboard"
)

// KeyEvent is a column event stamped with wall time. The session turns
// the stamp into chart time.
type KeyEvent struct {
	Column   uint8
	Pressed  bool
	Released bool
	Repeat   bool
	Time     time.Time
}

// KeyboardSource reads a terminal keyboard. Terminals only report key
// downs and their repeats, so a column is released once no repeat has
// arrived for RepeatTimeout.
type KeyboardSource struct {
	Keys          []rune // Index is the column
	RepeatTimeout time.Duration
}

func (k *KeyboardSource) Column(r rune) (uint8, bool) {
	for i, c := range k.Keys {
		if c == r {
			return uint8(i), true
		}
	}
	return 0, false
}

// Read turns keys into events until escape is pressed, keys is closed or
// ctx is done. events is closed when Read returns.
func (k *KeyboardSource) Read(ctx context.Context, keys <-chan keyboard.KeyEvent, events chan<- KeyEvent) error {
	defer close(events)

	timeout := k.RepeatTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ticker := time.NewTicker(timeout / 4)
	defer ticker.Stop()

	lastSeen := make([]time.Time, len(k.Keys))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if nil != key.Err {
				return key.Err
			}
			if key.Key == keyboard.KeyEsc || key.Key == keyboard.KeyCtrlC {
				return nil
			}
			col, ok := k.Column(key.Rune)
			if !ok {
				continue
			}
			now := time.Now()
			repeat := !lastSeen[col].IsZero()
			lastSeen[col] = now
			events <- KeyEvent{Column: col, Pressed: !repeat, Repeat: repeat, Time: now}
		case now := <-ticker.C:
			for col, seen := range lastSeen {
				if seen.IsZero() || now.Sub(seen) <= timeout {
					continue
				}
				lastSeen[col] = time.Time{}
				events <- KeyEvent{Column: uint8(col), Released: true, Time: seen}
			}
		}
	}
}
