package domain

import (
	"testing"
	"time"
)

func TestNormalizeColorHex(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"#ff0000", "#FF0000"},
		{"FF0000", "#FF0000"},
		{"#ff0000cc", "#FF0000CC"},
		{"  #00ff00  ", "#00FF00"},
		{"", DefaultTagColor},
		{"#fff", DefaultTagColor},
		{"#gggggg", DefaultTagColor},
		{"#ff00", DefaultTagColor},
		{"red", DefaultTagColor},
	}
	for _, c := range cases {
		if got := NormalizeColorHex(c.in); got != c.want {
			t.Errorf("NormalizeColorHex(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("valid UUID rejected: %v", err)
	}
	for _, bad := range []string{"", "not-a-uuid", "550E8400-E29B-41D4-A716-446655440000"} {
		if err := ValidateUUID(bad); err == nil {
			t.Errorf("ValidateUUID(%q) accepted", bad)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Work"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	for _, bad := range []string{"", "   ", "\t\n"} {
		if err := ValidateName(bad); err == nil {
			t.Errorf("ValidateName(%q) accepted", bad)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	s := FormatTime(now)
	if s != "2024-03-15T09:30:00Z" {
		t.Errorf("FormatTime = %q", s)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("round trip mismatch: %v != %v", parsed, now)
	}
}

func TestDisplayTitle(t *testing.T) {
	title := "Example Page"
	link := Link{URL: "https://www.example.com/post"}
	if got := link.DisplayTitle(); got != link.URL {
		t.Errorf("DisplayTitle without title = %q", got)
	}
	link.Title = &title
	if got := link.DisplayTitle(); got != "Example Page" {
		t.Errorf("DisplayTitle with title = %q", got)
	}
}
