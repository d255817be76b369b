package helpers

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10.005, 10.01},
		{10.004, 10.0},
		{0.1 + 0.2, 0.3},
		{-2.675, -2.68},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMinorUnitRoundTrip(t *testing.T) {
	tests := []struct {
		major float64
		minor int64
	}{
		{123.45, 12345},
		{0.01, 1},
		{1000, 100000},
		{0, 0},
	}
	for _, tt := range tests {
		if got := ToMinor(tt.major); got != tt.minor {
			t.Errorf("ToMinor(%v) = %v, want %v", tt.major, got, tt.minor)
		}
		if got := FromMinor(tt.minor); got != tt.major {
			t.Errorf("FromMinor(%v) = %v, want %v", tt.minor, got, tt.major)
		}
	}
}
