package selectiverepeat

import "testing"

func TestSeqOffset(t *testing.T) {
	tests := []struct {
		name  string
		base  int
		seq   int
		space int
		want  int
	}{
		{"base itself", 0, 0, 12, 0},
		{"no wrap", 3, 7, 12, 4},
		{"wrapped seq", 10, 1, 12, 3},
		{"seq just behind base", 5, 4, 12, 11},
		{"opposite side of the ring", 0, 6, 12, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := seqOffset(tt.base, tt.seq, tt.space); got != tt.want {
				t.Errorf("seqOffset(%d, %d, %d) = %d, want %d",
					tt.base, tt.seq, tt.space, got, tt.want)
			}
		})
	}
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name  string
		base  int
		seq   int
		size  int
		space int
		want  bool
	}{
		{"base is inside", 0, 0, 6, 12, true},
		{"last slot is inside", 0, 5, 6, 12, true},
		{"one past the window", 0, 6, 6, 12, false},
		{"just behind the base", 0, 11, 6, 12, false},
		{"inside across the wrap", 10, 0, 6, 12, true},
		{"last slot across the wrap", 10, 3, 6, 12, true},
		{"one past across the wrap", 10, 4, 6, 12, false},
		{"old retired number", 6, 0, 6, 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inWindow(tt.base, tt.seq, tt.size, tt.space); got != tt.want {
				t.Errorf("inWindow(%d, %d, %d, %d) = %v, want %v",
					tt.base, tt.seq, tt.size, tt.space, got, tt.want)
			}
		})
	}
}
