package model

// Reminders is the contents of reminders.json.
type Reminders struct {
	Timestamps
	Reminders  []Reminder         `json:"reminders"`
	Statistics ReminderStatistics `json:"statistics"`
}

type ReminderPriority string

const (
	PriorityHigh   ReminderPriority = "high"
	PriorityMedium ReminderPriority = "medium"
	PriorityLow    ReminderPriority = "low"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
	ReminderOverdue   ReminderStatus = "overdue"
)

type Reminder struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Type         string           `json:"type"`
	DueDate      string           `json:"due_date,omitempty"`
	Priority     ReminderPriority `json:"priority,omitempty"`
	Status       ReminderStatus   `json:"status,omitempty"`
	Frequency    string           `json:"frequency,omitempty"`
	Active       *bool            `json:"active,omitempty"`
	NextReminder string           `json:"next_reminder,omitempty"`
	Hospital     string           `json:"hospital,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// Due returns the reminder's due date, falling back to next_reminder for
// recurring reminders that carry no fixed due date.
func (r Reminder) Due() string {
	if r.DueDate != "" {
		return r.DueDate
	}
	return r.NextReminder
}

func (r Reminder) RecordDate() string { return r.Due() }

type ReminderStatistics struct {
	TotalReminders  int     `json:"total_reminders"`
	ActiveReminders int     `json:"active_reminders"`
	Upcoming7Days   int     `json:"upcoming_7_days"`
	OverdueCount    int     `json:"overdue_count"`
	CompletionRate  float64 `json:"completion_rate"`
	LastUpdated     *string `json:"last_updated"`
}

func EmptyReminders() *Reminders {
	r := &Reminders{}
	r.Normalize()
	return r
}

func (r *Reminders) Normalize() {
	if r.Reminders == nil {
		r.Reminders = []Reminder{}
	}
}
