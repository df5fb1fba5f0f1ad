package recommend

import "testing"

func TestReinforceWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		w    float64
		step float64
		want float64
	}{
		{"from zero", 0, 0.1, 0.1},
		{"from half", 0.5, 0.1, 0.55},
		{"rounded to four places", 0.12345, 0.1, 0.2111},
		{"already one", 1, 0.1, 1},
		{"full step", 0.3, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ReinforceWeight(tt.w, tt.step); got != tt.want {
				t.Errorf("ReinforceWeight(%v, %v) = %v, want %v", tt.w, tt.step, got, tt.want)
			}
		})
	}
}

func TestReinforceWeight_MonotoneAndBounded(t *testing.T) {
	t.Parallel()

	for i := 0; i <= 1000; i++ {
		w := float64(i) / 1000
		got := ReinforceWeight(w, 0.1)
		// rounding to 4 places may land just under w when w has more precision
		if got < w-0.00005 || got > 1 {
			t.Fatalf("ReinforceWeight(%v) = %v, want in [%v, 1]", w, got, w)
		}
	}

	w := 0.0
	for range 500 {
		next := ReinforceWeight(w, 0.1)
		if next < w || next > 1 {
			t.Fatalf("repeated reinforcement left bounds: %v -> %v", w, next)
		}
		w = next
	}
	if w < 0.999 {
		t.Errorf("expected repeated reinforcement to approach 1, got %v", w)
	}
}

func TestDecayWeight(t *testing.T) {
	t.Parallel()

	if got := DecayWeight(0.3, 0.05); got < 0.2849999 || got > 0.2850001 {
		t.Errorf("DecayWeight(0.3, 0.05) = %v, want 0.285", got)
	}

	for i := 0; i <= 1000; i++ {
		w := float64(i) / 1000
		if got := DecayWeight(w, 0.05); got > w || got < 0 {
			t.Fatalf("DecayWeight(%v) = %v, want in [0, %v]", w, got, w)
		}
	}

	w := 1.0
	for range 1000 {
		w = DecayWeight(w, 0.05)
	}
	if w <= 0 {
		t.Errorf("decay must not floor at zero, got %v", w)
	}
}
