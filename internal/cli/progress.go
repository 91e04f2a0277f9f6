package cli

import (
	"fmt"
	"strings"

	"github.com/habitflow/habitflow/internal/domain"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Terminal bars for level progress and the weekly activity chart.
// Shows: [============>.................]  42%

const barWidth = 30 // Characters for the progress bar

// renderBar draws a bar for pct in 0..100.
func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

// renderLevel shows the level, the bar and the points still needed.
func renderLevel(lvl domain.Level, toNext int) string {
	return fmt.Sprintf("Level %d  %s  %d/%d XP (%d to next)",
		lvl.Level, renderBar(lvl.ProgressPct), lvl.IntoLevel, lvl.PerLevel, toNext)
}

// renderActivity draws one row per day, scaled to the busiest day.
func renderActivity(days []domain.DayActivity) []string {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Completed)
	}

	rows := make([]string, len(days))
	for i, d := range days {
		width := 0
		if peak > 0 {
			width = d.Completed * barWidth / peak
		}
		weekday := d.Date.Time().Format("Mon")
		rows[i] = fmt.Sprintf("%s %s  %s %d", weekday, d.Date, strings.Repeat("#", width), d.Completed)
	}
	return rows
}
