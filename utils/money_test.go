package utils

import "testing"

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{3.456, 3.46},
		{3.454, 3.45},
		{15.0, 15.0},
		{0.1 + 0.2, 0.3},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCents(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{15.00, 1500},
		{3.50, 350},
		{0.1 + 0.2, 30},
		{19.99, 1999},
	}
	for _, tc := range cases {
		if got := Cents(tc.in); got != tc.want {
			t.Fatalf("Cents(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
