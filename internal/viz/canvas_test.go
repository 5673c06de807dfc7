package viz

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.DotWidth() != 8 || c.DotHeight() != 8 {
		t.Fatalf("dot size = %dx%d, want 8x8", c.DotWidth(), c.DotHeight())
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("expected dot to be set")
	}
	if c.Grid[1][1] != brailleBlank|0x10 {
		t.Errorf("cell = %U, want %U", c.Grid[1][1], brailleBlank|0x10)
	}

	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Grid[1][1] != brailleBlank {
		t.Error("expected dot to be cleared")
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(100, 100)
	if c.IsSet(-1, 0) {
		t.Error("negative coordinates must never be set")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := 0; i < 20; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d,%d) missing", i, i)
		}
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(6, 3)
	c.Blob(5, 5, 1)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if utf8.RuneCountInString(l) != 6 {
			t.Errorf("line %q has %d runes, want 6", l, utf8.RuneCountInString(l))
		}
	}

	c.Clear()
	if c.IsSet(5, 5) {
		t.Error("Clear left a dot set")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3, 4}, 2); utf8.RuneCountInString(got) != 2 {
		t.Errorf("expected the last 2 values, got %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := ProgressBar(0.5, 4); got != "██░░" {
		t.Errorf("ProgressBar = %q", got)
	}
}
