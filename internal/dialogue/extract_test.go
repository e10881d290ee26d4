package dialogue

import "testing"

var orthoRoster = []string{"Dr. Ramesh Yadav", "Dr. Priya Mehra"}

func TestExtractDoctorName(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"full name", "I'd like to see Dr. Ramesh Yadav please", "Dr. Ramesh Yadav"},
		{"name without title", "ramesh yadav sounds good", "Dr. Ramesh Yadav"},
		{"surname only", "I'll go with Yadav", "Dr. Ramesh Yadav"},
		{"first name only", "priya please", "Dr. Priya Mehra"},
		{"three char prefix", "I'd like ram please", "Dr. Ramesh Yadav"},
		{"no match", "whoever is available", ""},
		{"empty message", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDoctorName(tt.message, orthoRoster); got != tt.want {
				t.Errorf("ExtractDoctorName(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestExtractDoctorNameEmptyRoster(t *testing.T) {
	if got := ExtractDoctorName("dr. yadav", nil); got != "" {
		t.Errorf("expected no match with empty roster, got %q", got)
	}
}

func TestExtractTimeSlot(t *testing.T) {
	slots := []string{"10:00 AM - 11:00 AM", "3:00 PM - 4:00 PM"}

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"exact label", "book me for 10:00 AM - 11:00 AM", "10:00 AM - 11:00 AM"},
		{"start half", "10:00 am works", "10:00 AM - 11:00 AM"},
		{"end half", "the one ending 4:00 pm", "3:00 PM - 4:00 PM"},
		{"bare numeral", "the 10 o'clock one", "10:00 AM - 11:00 AM"},
		{"afternoon numeral", "3 works for me", "3:00 PM - 4:00 PM"},
		{"no match", "sometime in the evening", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTimeSlot(tt.message, slots); got != tt.want {
				t.Errorf("ExtractTimeSlot(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestExtractTimeSlotRoundTrip(t *testing.T) {
	// Every slot label fed back in verbatim must match itself.
	slots := []string{
		"9:00 AM - 10:00 AM",
		"10:00 AM - 11:00 AM",
		"11:30 AM - 12:30 PM",
		"2:00 PM - 3:00 PM",
		"4:00 PM - 5:00 PM",
		"5:00 PM - 6:00 PM",
	}
	for _, slot := range slots {
		if got := ExtractTimeSlot(slot, slots); got != slot {
			t.Errorf("round trip for %q returned %q", slot, got)
		}
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"numeral", "the 20 please", "2024-03-20"},
		{"ordinal suffix", "book the 21st", "2024-03-21"},
		{"word", "twenty works", "2024-03-20"},
		{"relative last", "the last one", "2024-03-22"},
		{"ordinal word", "the second date", "2024-03-21"},
		{"iso date", "2024-03-22 please", "2024-03-22"},
		{"no match", "next month maybe", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDate(tt.message); got != tt.want {
				t.Errorf("ExtractDate(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestExtractDateRoundTrip(t *testing.T) {
	for _, date := range []string{"2024-03-20", "2024-03-21", "2024-03-22"} {
		if got := ExtractDate(date); got != date {
			t.Errorf("round trip for %q returned %q", date, got)
		}
	}
}
