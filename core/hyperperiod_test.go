package core

import "testing"

func TestGCD(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{12, 18, 6},
		{7, 13, 1},
		{0, 5, 5},
		{5, 0, 5},
	}
	for _, c := range cases {
		if got := GCD(c.a, c.b); got != c.want {
			t.Fatalf("GCD(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLCM(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{4, 6, 12},
		{5, 7, 35},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := LCM(c.a, c.b); got != c.want {
			t.Fatalf("LCM(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLCMAll(t *testing.T) {
	if got := LCMAll([]int64{1000, 500, 250}); got != 1000 {
		t.Fatalf("LCMAll = %d, want 1000", got)
	}
	if got := LCMAll([]int64{3, 5, 7}); got != 105 {
		t.Fatalf("LCMAll = %d, want 105", got)
	}
	if got := LCMAll(nil); got != 0 {
		t.Fatalf("LCMAll(nil) = %d, want 0", got)
	}
}
