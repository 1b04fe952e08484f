package sysinfo

import "testing"

func gib(n uint64) uint64 { return n << 30 }

func TestPlanFor(t *testing.T) {
	tests := []struct {
		name     string
		res      Resources
		expected int
	}{
		{
			name:     "small memory halves the cores",
			res:      Resources{CPUs: 4, MemBytes: gib(2)},
			expected: 2,
		},
		{
			name:     "mid memory matches the cores",
			res:      Resources{CPUs: 4, MemBytes: gib(6)},
			expected: 4,
		},
		{
			name:     "large memory doubles the cores",
			res:      Resources{CPUs: 4, MemBytes: gib(16)},
			expected: 8,
		},
		{
			name:     "cap at 32",
			res:      Resources{CPUs: 20, MemBytes: gib(16)},
			expected: 32,
		},
		{
			name:     "tiny host floor",
			res:      Resources{CPUs: 1, MemBytes: gib(1)},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlanFor(tt.res); got != tt.expected {
				t.Errorf("PlanFor(%+v) = %d, want %d", tt.res, got, tt.expected)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	if got := Plan(); got < 1 || got > 32 {
		t.Errorf("Plan() = %d, want a value in [1, 32]", got)
	}
}

func TestProbe(t *testing.T) {
	res, err := Probe()
	if err != nil {
		t.Skipf("host probe unavailable: %v", err)
	}
	if res.CPUs < 1 {
		t.Errorf("CPUs = %d, want at least 1", res.CPUs)
	}
	if res.MemBytes == 0 {
		t.Error("MemBytes = 0, want nonzero")
	}
}
