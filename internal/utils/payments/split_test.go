package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBudget(t *testing.T) {
	tests := []struct {
		name             string
		budget           int64
		expectShare      int64
		expectCommission int64
	}{
		{"even split", 100000, 80000, 20000},
		{"non-divisible budget floors creator share", 99, 79, 20},
		{"one centavo goes entirely to commission", 1, 0, 1},
		{"large budget", 1_000_000_000, 800_000_000, 200_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share, commission := SplitBudget(tt.budget)
			assert.Equal(t, tt.expectShare, share)
			assert.Equal(t, tt.expectCommission, commission)
			assert.Equal(t, tt.budget, share+commission, "parts must sum to the budget")
		})
	}
}
