// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(seq *Sequence) []string {
	var frames []string
	for {
		f, ok := seq.Next()
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

// =============================================================================
// SEQUENCE TESTS
// =============================================================================

func TestSequence_GrowingPrefixes(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	frames := collect(NewSequence(text, 5))

	require.NotEmpty(t, frames)
	assert.Equal(t, text, frames[len(frames)-1])
	for i, f := range frames {
		assert.True(t, strings.HasPrefix(text, f), "frame %d is not a prefix", i)
		if i > 0 {
			assert.Greater(t, len(f), len(frames[i-1]), "frame %d did not grow", i)
		}
	}
	assert.Len(t, frames, 9)
}

func TestSequence_MultibyteRunes(t *testing.T) {
	frames := collect(NewSequence("日本語の講義", 2))
	assert.Equal(t, []string{"日本", "日本語の", "日本語の講義"}, frames)
}

func TestSequence_EmptyText(t *testing.T) {
	seq := NewSequence("", 4)
	assert.False(t, seq.Done())

	f, ok := seq.Next()
	assert.True(t, ok)
	assert.Equal(t, "", f)
	assert.True(t, seq.Done())

	_, ok = seq.Next()
	assert.False(t, ok)
}

func TestSequence_NonPositiveStepIsInstant(t *testing.T) {
	assert.Equal(t, []string{"all at once"}, collect(NewSequence("all at once", 0)))
	assert.Equal(t, []string{"all at once"}, collect(NewSequence("all at once", -1)))
}

func TestSequence_EscapesAreAtomic(t *testing.T) {
	text := "\x1b[1mbold\x1b[0m plain"
	frames := collect(NewSequence(text, 2))

	assert.Equal(t, []string{
		"\x1b[1mbo" + ResetSGR,
		"\x1b[1mbold\x1b[0m" + ResetSGR,
		"\x1b[1mbold\x1b[0m p" + ResetSGR,
		"\x1b[1mbold\x1b[0m pla" + ResetSGR,
		text,
	}, frames)
}

func TestSequence_OSCIsAtomic(t *testing.T) {
	text := "a\x1b]8;;http://x\x1b\\link\x1b]8;;\x1b\\"
	frames := collect(NewSequence(text, 1))

	assert.Equal(t, text, frames[len(frames)-1])
	for _, f := range frames {
		trimmed := strings.TrimSuffix(f, ResetSGR)
		assert.True(t, strings.HasPrefix(text, trimmed))
		assert.False(t, strings.HasSuffix(trimmed, "\x1b"), "frame split an escape: %q", f)
	}
}

func TestSequence_ChunksReassemble(t *testing.T) {
	text := "\x1b[32mgreen\x1b[0m and 日本"
	seq := NewSequence(text, 3)

	var b strings.Builder
	for {
		if _, ok := seq.Next(); !ok {
			break
		}
		b.WriteString(seq.Chunk())
	}
	assert.Equal(t, text, b.String())
}

// =============================================================================
// CONTROLLER TESTS
// =============================================================================

func TestController_RevealsToCompletion(t *testing.T) {
	c := NewController(time.Millisecond, 4)
	cmd := c.Start("hello world")
	require.NotNil(t, cmd)
	assert.True(t, c.Active())

	var frames []string
	for i := 0; i < 10; i++ {
		msg, ok := cmd().(TickMsg)
		require.True(t, ok)

		var done bool
		cmd, done = c.Update(msg)
		if done {
			assert.Nil(t, cmd)
			assert.False(t, c.Active())
			assert.Equal(t, []string{"hell", "hello wo"}, frames)
			return
		}
		frames = append(frames, c.Frame())
	}
	t.Fatal("reveal never finished")
}

func TestController_StartSupersedes(t *testing.T) {
	c := NewController(time.Millisecond, 1)
	first := c.Start("first answer")
	staleMsg := first().(TickMsg)

	second := c.Start("second")
	cmd, done := c.Update(staleMsg)
	assert.Nil(t, cmd)
	assert.False(t, done)
	assert.Equal(t, "", c.Frame())

	_, done = c.Update(second().(TickMsg))
	assert.False(t, done)
	assert.Equal(t, "s", c.Frame())
}

func TestController_CancelIgnoresPendingTicks(t *testing.T) {
	c := NewController(time.Millisecond, 2)
	msg := c.Start("some text")().(TickMsg)

	c.Cancel()
	assert.False(t, c.Active())

	cmd, done := c.Update(msg)
	assert.Nil(t, cmd)
	assert.False(t, done)
}

func TestController_IgnoresOtherControllers(t *testing.T) {
	a := NewController(time.Millisecond, 2)
	b := NewController(time.Millisecond, 2)
	msgA := a.Start("abc")().(TickMsg)
	b.Start("xyz")

	_, done := b.Update(msgA)
	assert.False(t, done)
	assert.Equal(t, "", b.Frame())
}

func TestController_InstantReveal(t *testing.T) {
	c := NewController(time.Hour, -1)
	cmd := c.Start("everything")

	_, done := c.Update(cmd().(TickMsg))
	assert.True(t, done)
}

func TestController_EmptyTextCompletes(t *testing.T) {
	c := NewController(time.Millisecond, 4)
	_, done := c.Update(c.Start("")().(TickMsg))
	assert.True(t, done)
}

// =============================================================================
// PLAY TESTS
// =============================================================================

func TestPlay_EmitsEverything(t *testing.T) {
	var b strings.Builder
	calls := 0
	err := Play(context.Background(), NewSequence("typewriter output", 4), time.Millisecond, func(chunk string) {
		calls++
		b.WriteString(chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "typewriter output", b.String())
	assert.Equal(t, 5, calls)
}

func TestPlay_NoDelay(t *testing.T) {
	var b strings.Builder
	err := Play(context.Background(), NewSequence("fast", 1), 0, func(chunk string) {
		b.WriteString(chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "fast", b.String())
}

func TestPlay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seq := NewSequence(strings.Repeat("x", 1000), 1)

	emitted := 0
	err := Play(ctx, seq, time.Millisecond, func(string) {
		emitted++
		if emitted == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, seq.Done())
}
