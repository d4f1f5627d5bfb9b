package model

import "fmt"

const ReminderTitlePrefix = "Study Reminder: "

// Notification is the user-facing payload of a fired reminder.
type Notification struct {
	TaskID string
	Title  string
	Body   string
}

func ReminderFor(t Task) Notification {
	return Notification{
		TaskID: t.ID,
		Title:  ReminderTitlePrefix + t.Title,
		Body:   fmt.Sprintf("%s • Due %s", t.Subject, t.Due.Pretty()),
	}
}
