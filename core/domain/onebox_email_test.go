package domain

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{"exact interested", "Interested", CategoryInterested},
		{"lowercase interested", "interested", CategoryInterested},
		{"whitespace", "  Interested  ", CategoryInterested},
		{"quoted", `"Interested"`, CategoryInterested},
		{"trailing period", "Spam.", CategorySpam},
		{"meeting booked", "Meeting Booked", CategoryMeetingBooked},
		{"meeting booked underscore", "meeting_booked", CategoryMeetingBooked},
		{"not interested", "not interested", CategoryNotInterested},
		{"out of office", "Out of Office", CategoryOutOfOffice},
		{"ooo shorthand", "OOO", CategoryOutOfOffice},
		{"garbage coerces", "I think the sender is very interested in a demo!", CategoryNotInterested},
		{"empty coerces", "", CategoryNotInterested},
		{"unknown label coerces", "Neutral", CategoryNotInterested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.IsValid() {
			t.Errorf("Categories() entry %q not valid", c)
		}
	}
	if Category("Neutral").IsValid() {
		t.Error("unknown category reported valid")
	}
	if Category("").IsValid() {
		t.Error("empty category reported valid")
	}
}

func TestEmailNormalize(t *testing.T) {
	tests := []struct {
		name    string
		email   Email
		wantID  string
		wantSub string
		wantCat Category
	}{
		{
			name:    "fills all defaults",
			email:   Email{AccountID: "acc-1", UID: 42},
			wantID:  "acc-1-42",
			wantSub: "(No subject)",
			wantCat: CategoryNotInterested,
		},
		{
			name: "keeps existing values",
			email: Email{
				ID:        "<msg@example.com>",
				AccountID: "acc-1",
				UID:       42,
				Subject:   "Re: pricing",
				Category:  CategoryInterested,
			},
			wantID:  "<msg@example.com>",
			wantSub: "Re: pricing",
			wantCat: CategoryInterested,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.email.Normalize()
			if tt.email.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", tt.email.ID, tt.wantID)
			}
			if tt.email.Subject != tt.wantSub {
				t.Errorf("Subject = %q, want %q", tt.email.Subject, tt.wantSub)
			}
			if tt.email.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", tt.email.Category, tt.wantCat)
			}
		})
	}
}

func TestEmailPreview(t *testing.T) {
	e := Email{Body: "hello world"}
	if got := e.Preview(5); got != "hello" {
		t.Errorf("Preview(5) = %q", got)
	}
	if got := e.Preview(100); got != "hello world" {
		t.Errorf("Preview(100) = %q", got)
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{
		ID:        "acc-1",
		Email:     "sales@example.com",
		IMAPHost:  "imap.example.com",
		IMAPPort:  993,
		IMAPUser:  "sales@example.com",
		Password:  "secret",
		CreatedAt: time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	missing := valid
	missing.IMAPHost = ""
	if err := missing.Validate(); err == nil {
		t.Error("Validate() accepted account without host")
	}

	badPort := valid
	badPort.IMAPPort = 0
	if err := badPort.Validate(); err == nil {
		t.Error("Validate() accepted account with zero port")
	}
}
