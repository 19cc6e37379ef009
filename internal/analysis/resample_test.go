package analysis

import "testing"

func TestSpread(t *testing.T) {
	v := func(xs ...float64) []*float64 {
		out := make([]*float64, len(xs))
		for i, x := range xs {
			out[i] = floatPtr(x)
		}
		return out
	}

	tests := []struct {
		name   string
		values []*float64
		slots  []int
		n      int
		want   []any // float64 or nil
	}{
		{
			name:   "dense input is unchanged",
			values: v(1, 2, 3),
			slots:  []int{0, 1, 2},
			n:      3,
			want:   []any{1.0, 2.0, 3.0},
		},
		{
			name:   "short gap holds the earlier value",
			values: v(1, 2),
			slots:  []int{0, 4},
			n:      5,
			want:   []any{1.0, 1.0, 1.0, 1.0, 2.0},
		},
		{
			name:   "long gap stays null",
			values: v(1, 2),
			slots:  []int{0, MaxHoldSec + 2},
			n:      MaxHoldSec + 3,
			want:   append(append([]any{1.0}, make([]any, MaxHoldSec+1)...), 2.0),
		},
		{
			name:   "dropout is not held over",
			values: []*float64{floatPtr(1), nil, floatPtr(3)},
			slots:  []int{0, 2, 4},
			n:      5,
			want:   []any{1.0, 1.0, nil, nil, 3.0},
		},
		{
			name:   "repeated slot keeps the later value",
			values: v(1, 2, 3),
			slots:  []int{0, 1, 1},
			n:      2,
			want:   []any{1.0, 3.0},
		},
		{
			name:   "skipped slots",
			values: v(1, 2, 3),
			slots:  []int{0, -1, 1},
			n:      2,
			want:   []any{1.0, 3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Spread(tt.values, tt.slots, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				switch {
				case w == nil && got[i] != nil:
					t.Errorf("[%d] = %v, want nil", i, *got[i])
				case w != nil && (got[i] == nil || *got[i] != w.(float64)):
					t.Errorf("[%d] = %v, want %v", i, got[i], w)
				}
			}
		})
	}

	if Spread(nil, []int{0}, 1) != nil {
		t.Error("Spread(nil) should stay nil")
	}
}
