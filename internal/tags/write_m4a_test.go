package tags

import "testing"

// M4A tag round-tripping needs a real MP4 container (moov/stco atom offsets
// shift on every tag rewrite), which isn't practical to hand-construct in a
// unit test, so this only covers the pure helper.
func TestSafeInt16Bounds(t *testing.T) {
	tests := []struct {
		in   int
		want int16
	}{
		{0, 0},
		{1, 1},
		{32767, 32767},
		{32768, 32767},
		{1 << 20, 32767},
		{-1, -1},
		{-32768, -32768},
		{-32769, -32768},
		{-(1 << 20), -32768},
	}
	for _, tt := range tests {
		if got := safeInt16(tt.in); got != tt.want {
			t.Errorf("safeInt16(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
