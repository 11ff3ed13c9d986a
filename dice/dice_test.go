package dice

import "testing"

func TestSource_Deterministic(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)

	for i := 0; i < 100; i++ {
		x, y := a.Intn(5), b.Intn(5)
		if x != y {
			t.Fatalf("Expected identical draws for the same seed at step %d, got %d and %d", i, x, y)
		}
		if x < 0 || x >= 5 {
			t.Fatalf("Expected draw in [0,5), got %d", x)
		}
	}
}

func TestNewSeededSource(t *testing.T) {
	src, err := NewSeededSource()
	if err != nil {
		t.Fatalf("NewSeededSource failed: %v", err)
	}
	if v := src.Intn(5); v < 0 || v >= 5 {
		t.Errorf("Expected draw in [0,5), got %d", v)
	}
}

func TestSequence(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		n      int
		want   []int
	}{
		{name: "replays in order", values: []int{0, 2, 4}, n: 5, want: []int{0, 2, 4}},
		{name: "wraps around", values: []int{1, 3}, n: 5, want: []int{1, 3, 1, 3}},
		{name: "reduced modulo n", values: []int{7, -1}, n: 5, want: []int{2, 4}},
		{name: "empty script", values: nil, n: 5, want: []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewSequence(tt.values...)
			for i, want := range tt.want {
				if got := seq.Intn(tt.n); got != want {
					t.Errorf("draw %d: expected %d, got %d", i, want, got)
				}
			}
		})
	}
}
