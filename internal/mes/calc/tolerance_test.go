package calc

import "testing"

func TestThresholds(t *testing.T) {
	tests := []struct {
		planned float64
		want    float64
	}{
		{999, 100},     // 10% tier, rounded up from 99.9
		{500, 50},      // exactly at the floor
		{100, 50},      // 10% would be 10, clamped to floor
		{0, 50},        // degenerate plan still gets minimum slack
		{1000, 75},     // 7.5% tier
		{4000, 300},    // 7.5% tier
		{5000, 250},    // 5% tier
		{9999, 500},    // 5% tier, 499.95 rounds to 500
		{10000, 300},   // 3% tier
		{100000, 2000}, // 3% would be 3000, clamped to ceiling
	}
	for _, tt := range tests {
		got := Thresholds(tt.planned)
		if got.Lower != tt.want || got.Upper != tt.want {
			t.Errorf("Thresholds(%v) = {%v, %v}, want {%v, %v}",
				tt.planned, got.Lower, got.Upper, tt.want, tt.want)
		}
	}
}

func TestBandBounds(t *testing.T) {
	b := Thresholds(1000) // {75, 75}
	if got := b.LowerBound(1000); got != 925 {
		t.Errorf("LowerBound = %v, want 925", got)
	}
	if got := b.UpperBound(1000); got != 1075 {
		t.Errorf("UpperBound = %v, want 1075", got)
	}

	// lower bound never goes negative
	small := Thresholds(10) // clamped to {50, 50}
	if got := small.LowerBound(10); got != 0 {
		t.Errorf("LowerBound(10) = %v, want 0", got)
	}
}

func TestBandState(t *testing.T) {
	b := Thresholds(1000) // band [925, 1075]

	tests := []struct {
		produced float64
		want     CompletionState
	}{
		{0, StateIncomplete},
		{924, StateIncomplete},
		{925, StateWithinRange},
		{1000, StateWithinRange},
		{1075, StateWithinRange},
		{1076, StateOverLimit},
	}
	for _, tt := range tests {
		if got := b.State(1000, tt.produced); got != tt.want {
			t.Errorf("State(1000, %v) = %v, want %v", tt.produced, got, tt.want)
		}
	}
}
