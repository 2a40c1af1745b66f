package util

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("/short", 20); got != "/short" {
		t.Fatalf("short path changed: %q", got)
	}
	got := TruncatePath("/home/user/Downloads/recipe-explorer/1-salmon.jpg", 20)
	if got != "...orer/1-salmon.jpg" {
		t.Fatalf("TruncatePath = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Berry Smoothie", 20, "Berry Smoothie"},
		{"Berry Smoothie", 6, "Berry…"},
		{"Berry Smoothie", 0, ""},
		{"\x1b[1mBold title\x1b[0m", 20, "\x1b[1mBold title\x1b[0m"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
	if w := DisplayWidth(Truncate("\x1b[1mBold title\x1b[0m", 5)); w != 5 {
		t.Fatalf("styled truncate width = %d, want 5", w)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Fatalf("PadRight = %q", got)
	}
	if got := PadRight("Sauté", 6); DisplayWidth(got) != 6 {
		t.Fatalf("PadRight width = %d", DisplayWidth(got))
	}
	if got := PadRight("toolong", 3); got != "toolong" {
		t.Fatalf("PadRight should not cut: %q", got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Grilled Salmon with Lemon": "grilled-salmon-with-lemon",
		"  Chicken Stir-fry!  ":     "chicken-stir-fry",
		"Crème brûlée":              "crème-brûlée",
		"---":                       "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
