package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Weekend Trip  ",
			want:  "Weekend Trip",
		},
		{
			name:  "multiple spaces between words",
			input: "Weekend    Trip",
			want:  "Weekend Trip",
		},
		{
			name:  "tabs and newlines",
			input: "Weekend\t\nTrip",
			want:  "Weekend Trip",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Chargers™ ",
			want:  "Café & Chargers™",
		},
		{
			name:  "vietnamese characters",
			input: " Chuyến đi Đà Lạt ",
			want:  "Chuyến đi Đà Lạt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNote(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "within limit",
			input:  "  short note  ",
			maxLen: 255,
			want:   "short note",
		},
		{
			name:   "clipped to limit",
			input:  "abcdefghij",
			maxLen: 5,
			want:   "abcde",
		},
		{
			name:   "multibyte runes clip on rune boundary",
			input:  "Đà Lạt trip",
			maxLen: 6,
			want:   "Đà Lạt",
		},
		{
			name:   "zero limit keeps everything",
			input:  "unbounded note",
			maxLen: 0,
			want:   "unbounded note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNote(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("NormalizeNote(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "  Charging ",
			want:  "charging",
		},
		{
			name:  "collapses whitespace",
			input: "awaiting   Charge",
			want:  "awaiting charge",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLabel(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
