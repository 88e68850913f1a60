package models

import "time"

// Notification is a bank-wide announcement shown on the notifications page.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
