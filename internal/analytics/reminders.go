package analytics

import (
	"math"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
)

const dueSoonDays = 7

// ReminderSummary counts reminders by state relative to now's calendar day.
// A pending reminder whose due date has passed counts as overdue, as does
// one already stored as overdue.
func ReminderSummary(reminders []model.Reminder, now time.Time) model.ReminderSummary {
	today := now.Format(model.DateLayout)
	horizon := now.AddDate(0, 0, dueSoonDays).Format(model.DateLayout)

	out := model.ReminderSummary{Total: len(reminders)}
	for _, r := range reminders {
		due := dayPrefix(r.Due())

		switch r.Status {
		case model.ReminderCompleted:
			out.Completed++
			continue
		case model.ReminderOverdue:
			out.Overdue++
			continue
		}

		out.Pending++
		switch {
		case due == "":
		case due < today:
			out.Overdue++
		case due <= horizon:
			out.DueWithin7Days++
		}
	}

	if out.Total > 0 {
		out.CompletionRate = int(math.Round(float64(out.Completed) / float64(out.Total) * 100))
	}
	return out
}

func dayPrefix(date string) string {
	if len(date) < len(model.DateLayout) {
		return ""
	}
	return date[:len(model.DateLayout)]
}
