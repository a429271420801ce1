package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	// Save and restore original environment
	originalEnv := os.Getenv("SCAN_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("SCAN_WORKERS", originalEnv)
		} else {
			os.Unsetenv("SCAN_WORKERS")
		}
	}()

	os.Unsetenv("SCAN_WORKERS")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier floors at one",
			multiplier: 0.1,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	originalEnv := os.Getenv("SCAN_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("SCAN_WORKERS", originalEnv)
		} else {
			os.Unsetenv("SCAN_WORKERS")
		}
	}()

	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
		useCalc  bool // fall back to calculated value
	}{
		{
			name:     "Valid override",
			envValue: "4",
			limit:    0,
			expected: 4,
		},
		{
			name:     "Override capped by limit",
			envValue: "100",
			limit:    8,
			expected: 8,
		},
		{
			name:     "Invalid override ignored",
			envValue: "abc",
			limit:    0,
			useCalc:  true,
		},
		{
			name:     "Zero override ignored",
			envValue: "0",
			limit:    0,
			useCalc:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("SCAN_WORKERS", tt.envValue)

			got := Count(1.0, tt.limit)
			if tt.useCalc {
				if got < 1 {
					t.Errorf("Count returned %d, want at least 1", got)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("Count = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestHelperFunctions(t *testing.T) {
	os.Unsetenv("SCAN_WORKERS")

	if got := ForCPU(0); got < 1 {
		t.Errorf("ForCPU(0) = %d, want at least 1", got)
	}
	if got := ForIO(0); got < ForCPU(0) {
		t.Errorf("ForIO(0) = %d, want at least ForCPU(0) = %d", got, ForCPU(0))
	}
	if got := ForMixed(4); got > 4 {
		t.Errorf("ForMixed(4) = %d, want at most 4", got)
	}
}
