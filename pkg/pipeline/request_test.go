package pipeline

import "testing"

func TestTargetLength(t *testing.T) {
	tests := []struct {
		n    int
		pct  float64
		want int
	}{
		{100, 29, 29},
		{300, 0.7, 2},
		{10, 0, 10},
		{10, 100, 10},
		{10, 0.1, 1},
		{4, 250, 10},
		{3, 33.3, 1},
	}
	for _, tt := range tests {
		r := UnaryRequest{LengthPercent: tt.pct}
		if got := r.targetLength(tt.n); got != tt.want {
			t.Errorf("targetLength(%d, %v%%) = %d, want %d", tt.n, tt.pct, got, tt.want)
		}
	}
}

// Every percentage on the 0.1 grid truncates like exact decimal arithmetic.
func TestTargetLengthMatchesExactArithmetic(t *testing.T) {
	for n := 1; n <= 120; n++ {
		for tenths := 1; tenths <= 10000; tenths += 7 {
			pct := float64(tenths) / 10
			want := max(1, n*tenths/1000)
			if tenths == 1000 {
				want = n
			}
			r := UnaryRequest{LengthPercent: pct}
			if got := r.targetLength(n); got != want {
				t.Fatalf("targetLength(%d, %v%%) = %d, want %d", n, pct, got, want)
			}
		}
	}
}
