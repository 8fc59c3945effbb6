package sanitize

import "testing"

func TestFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"spring sale", "spring sale"},
		{"spring/sale:v2", "springsalev2"},
		{"a_b 9", "a_b 9"},
		{"../../etc/passwd", "etcpasswd"},
		{"  ", ""},
		{"name.", "name"},
	}
	for _, tc := range cases {
		if got := Filename(tc.in); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFilenameOr(t *testing.T) {
	if got := FilenameOr("///", "campaign"); got != "campaign" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := FilenameOr("spring", "campaign"); got != "spring" {
		t.Fatalf("expected sanitized name, got %q", got)
	}
}
