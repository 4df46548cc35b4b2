package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the sales-intent classification assigned to every email.
type Category string

const (
	CategoryInterested    Category = "Interested"
	CategoryMeetingBooked Category = "Meeting Booked"
	CategoryNotInterested Category = "Not Interested"
	CategorySpam          Category = "Spam"
	CategoryOutOfOffice   Category = "Out of Office"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryInterested,
		CategoryMeetingBooked,
		CategoryNotInterested,
		CategorySpam,
		CategoryOutOfOffice,
	}
}

// ParseCategory coerces arbitrary text (typically raw LLM output) into a
// valid category. Anything unrecognized maps to Not Interested.
func ParseCategory(s string) Category {
	normalized := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'.`)))
	switch normalized {
	case "interested":
		return CategoryInterested
	case "meeting booked", "meeting_booked":
		return CategoryMeetingBooked
	case "not interested", "not_interested":
		return CategoryNotInterested
	case "spam":
		return CategorySpam
	case "out of office", "out_of_office", "ooo":
		return CategoryOutOfOffice
	default:
		return CategoryNotInterested
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryInterested, CategoryMeetingBooked, CategoryNotInterested,
		CategorySpam, CategoryOutOfOffice:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// Email is a stored message. ID is the RFC message id when present,
// otherwise a synthesized accountId-uid identifier.
type Email struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Folder    string    `json:"folder"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Date      time.Time `json:"date"`
	Category  Category  `json:"category"`
	UID       uint32    `json:"uid"`
}

// SyntheticID builds the fallback message id for messages without one.
func SyntheticID(accountID string, uid uint32) string {
	return fmt.Sprintf("%s-%d", accountID, uid)
}

// Normalize fills required defaults on a freshly fetched message.
func (e *Email) Normalize() {
	if e.Subject == "" {
		e.Subject = "(No subject)"
	}
	if e.ID == "" {
		e.ID = SyntheticID(e.AccountID, e.UID)
	}
	if e.Category == "" {
		e.Category = CategoryNotInterested
	}
}

// Preview returns the first n characters of the body.
func (e *Email) Preview(n int) string {
	if len(e.Body) <= n {
		return e.Body
	}
	return e.Body[:n]
}
