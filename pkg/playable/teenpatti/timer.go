package teenpatti

import "time"

// turnTimer is the single turn deadline of a game
// Every clear() bumps the generation, so an expiry already queued for a superseded turn is dropped.
type turnTimer struct {
	limit      time.Duration
	generation uint64
	startedAt  time.Time
	timer      *time.Timer
}

// start cancels any pending deadline and arms a new one
// onExpire runs through dispatch, and only if no clear() happened in between.
// Without a limit or a dispatch func nothing is armed and there is no deadline.
func (t *turnTimer) start(now time.Time, dispatch func(func()), onExpire func()) {
	t.clear()
	t.startedAt = time.Time{}

	if t.limit <= 0 || dispatch == nil {
		return
	}

	t.startedAt = now

	gen := t.generation
	t.timer = time.AfterFunc(t.limit, func() {
		dispatch(func() {
			if gen != t.generation {
				return
			}

			t.timer = nil
			onExpire()
		})
	})
}

// clear cancels the pending deadline
func (t *turnTimer) clear() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	t.generation++
}

// armed returns true if a deadline is pending
func (t *turnTimer) armed() bool {
	return t.timer != nil
}

// deadline returns when the current turn times out
func (t *turnTimer) deadline() time.Time {
	if t.limit <= 0 || t.startedAt.IsZero() {
		return time.Time{}
	}

	return t.startedAt.Add(t.limit)
}
