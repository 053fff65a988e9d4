package scale

import (
	"errors"
	"math"
	"testing"
)

func TestRemap(t *testing.T) {
	tests := []struct {
		name                            string
		x, inMin, inMax, outMin, outMax float64
		want                            float64
	}{
		{name: "midpoint", x: 5, inMin: 0, inMax: 10, outMin: 0, outMax: 100, want: 50},
		{name: "lower bound", x: 0, inMin: 0, inMax: 10, outMin: 0, outMax: 100, want: 0},
		{name: "upper bound", x: 10, inMin: 0, inMax: 10, outMin: 0, outMax: 100, want: 100},
		{name: "clamp high", x: 11, inMin: 0, inMax: 10, outMin: 0, outMax: 100, want: 100},
		{name: "clamp low", x: -1, inMin: 0, inMax: 10, outMin: 0, outMax: 100, want: 0},
		{name: "inverted output", x: -32.625, inMin: -65.25, inMax: 0, outMin: 400, outMax: 150, want: 275},
		{name: "inverted output at min", x: -65.25, inMin: -65.25, inMax: 0, outMin: 400, outMax: 150, want: 400},
		{name: "inverted output at max", x: 0, inMin: -65.25, inMax: 0, outMin: 400, outMax: 150, want: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remap(tt.x, tt.inMin, tt.inMax, tt.outMin, tt.outMax)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Remap(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestRemap_StaysWithinOutputRange(t *testing.T) {
	inMin, inMax := -65.25, 0.0
	outMin, outMax := 400.0, 150.0

	for x := inMin; x <= inMax; x += 0.4 {
		got := Remap(x, inMin, inMax, outMin, outMax)
		if got > outMin || got < outMax {
			t.Fatalf("Remap(%v) = %v, outside [%v, %v]", x, got, outMax, outMin)
		}
	}
}

func TestRemapChecked_DegenerateRange(t *testing.T) {
	t.Run("equal bounds", func(t *testing.T) {
		got, err := RemapChecked(3, 3, 3, 400, 150)
		if !errors.Is(err, ErrDegenerateRange) {
			t.Errorf("expected ErrDegenerateRange, got %v", err)
		}
		if got != 400 {
			t.Errorf("got %v, want outMin 400", got)
		}
	})

	t.Run("equal bounds still clamps", func(t *testing.T) {
		got, err := RemapChecked(5, 3, 3, 400, 150)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if got != 150 {
			t.Errorf("got %v, want outMax 150", got)
		}
	})

	t.Run("NaN input", func(t *testing.T) {
		got, err := RemapChecked(math.NaN(), 0, 10, 1, 2)
		if !errors.Is(err, ErrDegenerateRange) {
			t.Errorf("expected ErrDegenerateRange, got %v", err)
		}
		if got != 1 {
			t.Errorf("got %v, want 1", got)
		}
	})

	t.Run("Remap hides the error", func(t *testing.T) {
		if got := Remap(3, 3, 3, 7, 9); got != 7 {
			t.Errorf("Remap() = %v, want 7", got)
		}
	})
}
