// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the coursechat
// dashboard.
//
// Toasts are non-blocking notifications stacked in a corner of the screen.
// They auto-dismiss after a configurable lifetime and implement the
// course.Notifier interface, so view-models report outcomes without knowing
// how they are displayed.
//
//	toasts := components.NewToasts(cfg.NotifyDuration())
//	registry := course.NewRegistry(client, toasts)
//	...
//	case components.ToastTickMsg:
//	    return m, toasts.Tick(msg.Time)
package components
