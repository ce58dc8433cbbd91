// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal paces the display of a finished answer so it appears to be
// typed out.
//
// The text is fully known before the reveal starts; nothing here streams
// from the network. A Sequence yields growing prefixes of the text, a
// Controller drives one Sequence from the Bubble Tea event loop, and Play
// drives one from an ordinary goroutine for line-oriented output.
//
// # Key Types
//
//   - Sequence: Lazy, single-use iterator of growing prefixes
//   - Controller: Tick-driven reveal with generation-based cancellation
//   - TickMsg: Message that advances a Controller
//
// # Usage
//
//	ctrl := reveal.NewController(16*time.Millisecond, 16)
//	cmd := ctrl.Start(formatted)
//	...
//	case reveal.TickMsg:
//	    cmd, done := ctrl.Update(msg)
package reveal
