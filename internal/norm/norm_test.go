package norm

import "testing"

func TestName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Work", "Work"},
		{"  Work  ", "Work"},
		{"work", "work"},
		{"\tReading List\n", "Reading List"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Name(c.in); got != c.want {
			t.Errorf("Name(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://example.com/a", "https://example.com/a", true},
		{"http://example.com", "http://example.com", true},
		{"HTTP://example.com", "http://example.com", true},
		{"example.com/path", "https://example.com/path", true},
		{"localhost:3000", "https://localhost:3000", true},
		{"example.com:8080/path", "https://example.com:8080/path", true},
		{"  https://example.com  ", "https://example.com", true},
		{"", "", false},
		{"   ", "", false},
		{"https://", "", false},
		{"not a url", "", false},
	}
	for _, c := range cases {
		got, ok := URL(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("URL(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestURLKey(t *testing.T) {
	if got := URLKey("example.com"); got != "https://example.com" {
		t.Errorf("URLKey canonical = %q", got)
	}
	// A bare host:port dedupes against its canonical https form.
	if URLKey("example.com:8080") != URLKey("https://example.com:8080") {
		t.Errorf("URLKey(%q) = %q, want %q",
			"example.com:8080", URLKey("example.com:8080"), URLKey("https://example.com:8080"))
	}
	// Unparseable input falls back to the trimmed raw string so stored
	// malformed records still dedupe against themselves.
	if got := URLKey("  not a url  "); got != "not a url" {
		t.Errorf("URLKey fallback = %q", got)
	}
}

func TestHost(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://www.example.com/a", "example.com"},
		{"https://blog.example.com", "blog.example.com"},
		{"example.com", "example.com"},
		{"localhost:3000", "localhost:3000"},
		{"not a url", ""},
	}
	for _, c := range cases {
		if got := Host(c.in); got != c.want {
			t.Errorf("Host(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFaviconURL(t *testing.T) {
	got := FaviconURL("https://www.example.com/page")
	want := "https://www.google.com/s2/favicons?domain=www.example.com&sz=128"
	if got != want {
		t.Errorf("FaviconURL = %q, want %q", got, want)
	}
	if got := FaviconURL("not a url at all://"); got != "" {
		t.Errorf("FaviconURL invalid = %q, want empty", got)
	}
}
