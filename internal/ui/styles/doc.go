// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the coursechat dashboard.

All colors use Lip Gloss AdaptiveColor so the palette follows the terminal
background. The theme mode from config ("auto", "dark", "light", "notty")
decides whether that background is detected or forced.

# Color System (colors.go)

  - Purple - Accent for answers and the selected course
  - Cyan - Brand color, headers and questions
  - Emerald - Success notifications
  - Rose - Errors and the delete dialog
  - Amber - Pending work such as uploads

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	title := theme.PaneTitle.Render("Courses")

Every style is plain when the mode is "notty".
*/
package styles
