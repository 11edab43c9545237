package models

import (
	"testing"
)

func TestTicketUUID(t *testing.T) {
	tests := []struct {
		position int
		id       string
	}{
		{0, "APT-1"},
		{12, "APT-99"},
		{3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			uuid1 := TicketUUID(tt.position, tt.id)
			uuid2 := TicketUUID(tt.position, tt.id)

			if uuid1 != uuid2 {
				t.Errorf("TicketUUID not deterministic: %v != %v", uuid1, uuid2)
			}

			if len(uuid1) != 36 {
				t.Errorf("TicketUUID invalid length: %d", len(uuid1))
			}
		})
	}

	if TicketUUID(1, "APT-1") == TicketUUID(2, "APT-1") {
		t.Errorf("different positions produced the same UUID")
	}
}

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nan", ""},
		{"NaN", ""},
		{" null ", ""},
		{"None", ""},
		{"NaT", ""},
		{"<NA>", ""},
		{"   ", ""},
		{"Open", "Open"},
		{"  In Progress ", "In Progress"},
		{"nanny cam", "nanny cam"},
	}

	for _, tt := range tests {
		if got := NormalizeField(tt.in); got != tt.want {
			t.Errorf("NormalizeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatStoreNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.0", "12"},
		{"12", "12"},
		{"nan", ""},
		{"12.5", "12.5"},
		{"Store 7", "Store 7"},
	}

	for _, tt := range tests {
		if got := FormatStoreNumber(tt.in); got != tt.want {
			t.Errorf("FormatStoreNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTicket_DisplayIDAndText(t *testing.T) {
	tk := &Ticket{Description: "raw description"}

	if tk.DisplayID() != MissingID {
		t.Errorf("DisplayID() = %v, want %v", tk.DisplayID(), MissingID)
	}
	if tk.Text() != "raw description" {
		t.Errorf("Text() = %q, want description fallback", tk.Text())
	}

	tk.TicketID = "APT-7"
	tk.CleanedText = "cleaned"
	if tk.DisplayID() != "APT-7" {
		t.Errorf("DisplayID() = %v, want APT-7", tk.DisplayID())
	}
	if tk.Text() != "cleaned" {
		t.Errorf("Text() = %q, want cleaned", tk.Text())
	}

	h1 := tk.ContentHash()
	tk.CleanedText = "changed"
	if h1 == tk.ContentHash() {
		t.Errorf("different text produced same hash")
	}
}
