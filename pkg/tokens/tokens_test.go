package tokens

import "testing"

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  int
		max  int
	}{
		{"empty", "", 0, 0},
		{"single word", "policy", 1, 2},
		{"sentence", "The deductible for comprehensive claims is five hundred dollars.", 8, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.text)
			if got < tt.min || got > tt.max {
				t.Errorf("Count(%q) = %d, want between %d and %d", tt.text, got, tt.min, tt.max)
			}
		})
	}
}

func TestCount_GrowsWithText(t *testing.T) {
	short := Count("flood damage")
	long := Count("flood damage is excluded unless a rider is purchased separately")
	if long <= short {
		t.Errorf("longer text counted %d tokens, shorter %d", long, short)
	}
}
