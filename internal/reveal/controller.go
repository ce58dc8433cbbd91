// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Defaults roughly match a 60fps terminal repaint.
const (
	DefaultDelay = 16 * time.Millisecond
	DefaultStep  = 16
)

var controllerIDs atomic.Int64

// =============================================================================
// MESSAGES
// =============================================================================

// TickMsg advances the Controller that scheduled it. Ticks from a
// cancelled or superseded reveal are ignored.
type TickMsg struct {
	controller int64
	generation int
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller reveals at most one text at a time inside a Bubble Tea program.
//
// Starting a new reveal or calling Cancel bumps the generation, which makes
// every tick already in flight stale. The zero value is not usable; create
// controllers with NewController.
type Controller struct {
	id         int64
	generation int
	delay      time.Duration
	step       int
	seq        *Sequence
	frame      string
}

// NewController creates a controller revealing step runes every delay.
// Zero values select the defaults; a negative step reveals instantly.
func NewController(delay time.Duration, step int) *Controller {
	c := &Controller{id: controllerIDs.Add(1)}
	c.SetPace(delay, step)
	return c
}

// SetPace changes the pacing used by the next Start. A reveal already in
// progress keeps its step but picks up the new delay on its next tick.
func (c *Controller) SetPace(delay time.Duration, step int) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if step == 0 {
		step = DefaultStep
	}
	c.delay = delay
	c.step = step
}

// Start cancels any reveal in progress and begins revealing text. The
// returned command delivers the first tick.
func (c *Controller) Start(text string) tea.Cmd {
	c.generation++
	c.seq = NewSequence(text, c.step)
	c.frame = ""
	if c.step < 0 {
		msg := TickMsg{controller: c.id, generation: c.generation}
		return func() tea.Msg { return msg }
	}
	return c.tick()
}

// Cancel stops the reveal in progress, if any. Its pending ticks become
// stale.
func (c *Controller) Cancel() {
	c.generation++
	c.seq = nil
	c.frame = ""
}

// Active reports whether a reveal is in progress.
func (c *Controller) Active() bool {
	return c.seq != nil
}

// Frame returns the current partial text. It is empty when no reveal is
// active.
func (c *Controller) Frame() string {
	return c.frame
}

// Update advances the reveal on a tick. done is true exactly once per
// reveal, on the tick that showed the final frame; after that the
// controller is inactive. Stale ticks return (nil, false).
func (c *Controller) Update(msg TickMsg) (cmd tea.Cmd, done bool) {
	if msg.controller != c.id || msg.generation != c.generation || c.seq == nil {
		return nil, false
	}

	if frame, ok := c.seq.Next(); ok {
		c.frame = frame
	}
	if c.seq.Done() {
		c.seq = nil
		c.frame = ""
		return nil, true
	}
	return c.tick(), false
}

func (c *Controller) tick() tea.Cmd {
	msg := TickMsg{controller: c.id, generation: c.generation}
	return tea.Tick(c.delay, func(time.Time) tea.Msg {
		return msg
	})
}

// =============================================================================
// PLAY
// =============================================================================

// Play drives seq with a ticker, passing each newly revealed chunk to emit.
// It returns nil once the sequence is exhausted, or ctx.Err() if the context
// is cancelled first. A delay <= 0 emits everything without pausing.
func Play(ctx context.Context, seq *Sequence, delay time.Duration, emit func(chunk string)) error {
	if delay <= 0 {
		for !seq.Done() {
			if err := ctx.Err(); err != nil {
				return err
			}
			seq.Next()
			emit(seq.Chunk())
		}
		return nil
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for !seq.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			seq.Next()
			emit(seq.Chunk())
		}
	}
	return nil
}
