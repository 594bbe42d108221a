package scheduler

import (
	"math"
	"testing"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSlots(t *testing.T) {
	tests := []struct {
		numUsers int
		total    float64
	}{
		{1, 10}, {3, 10}, {5, 10}, {7, 0.3}, {1000, 1},
	}

	for _, tt := range tests {
		plan := EqualTdma{}.PlanSlots(tt.numUsers, tt.total)
		require.Len(t, plan, tt.numUsers)
		assert.InDelta(t, tt.total, plan.Total(), 1e-9*tt.total)
		for i, s := range plan {
			assert.Equal(t, i, s.UserID)
			assert.InDelta(t, tt.total/float64(tt.numUsers), s.Duration, 1e-15)
			assert.InDelta(t, float64(i)*s.Duration, s.Start, 1e-12)
		}
	}
	assert.Empty(t, EqualTdma{}.PlanSlots(0, 10))
}

func TestComputeSumRateSingleUser(t *testing.T) {
	// 10 dB over 1 MHz for the whole period
	a := model.Assignment{{UserID: 0, SurfaceID: 0, SnrDb: 10}}
	rates, sum := ComputeSumRate(1, a, 1e6, 10)
	require.Len(t, rates, 1)
	assert.InDelta(t, 1e6*math.Log2(11), rates[0].RateBps, 1e-6)
	assert.Equal(t, rates[0].RateBps, sum)
}

func TestComputeSumRateEqualShare(t *testing.T) {
	a := model.Assignment{
		{UserID: 0, SurfaceID: 0, SnrDb: 0},
		{UserID: 1, SurfaceID: 2, SnrDb: 0},
	}
	rates, sum := ComputeSumRate(2, a, 5e6, 10)
	assert.InDelta(t, 2.5e6, rates[0].RateBps, 1e-6)
	assert.InDelta(t, 2.5e6, rates[1].RateBps, 1e-6)
	assert.InDelta(t, 5e6, sum, 1e-6)
}

func TestComputeSumRateUnassigned(t *testing.T) {
	a := model.Assignment{
		{UserID: 0, SurfaceID: model.Unassigned, SnrDb: math.Inf(-1)},
		{UserID: 1, SurfaceID: 1, SnrDb: 20},
	}
	rates, sum := ComputeSumRate(2, a, 5e6, 10)
	assert.Equal(t, 0.0, rates[0].RateBps)
	assert.False(t, math.IsNaN(sum))
	assert.Equal(t, rates[1].RateBps, sum)
}

func TestComputeSumRateMissingEntry(t *testing.T) {
	rates, sum := ComputeSumRate(3, model.Assignment{{UserID: 0, SnrDb: 10}}, 1e6, 1)
	require.Len(t, rates, 3)
	assert.Equal(t, 0.0, rates[2].RateBps)
	assert.Equal(t, rates[0].RateBps, sum)
}

func TestComputeSumRateNoUsers(t *testing.T) {
	rates, sum := ComputeSumRate(0, model.Assignment{}, 5e6, 10)
	assert.Empty(t, rates)
	assert.Equal(t, 0.0, sum)
}

func TestComputeSumRateMonotonic(t *testing.T) {
	prev := -1.0
	for snr := -20.0; snr <= 40; snr += 2.5 {
		_, sum := ComputeSumRate(1, model.Assignment{{UserID: 0, SnrDb: snr}}, 5e6, 10)
		assert.Greater(t, sum, prev)
		prev = sum
	}
}

func TestSnrDbToLinear(t *testing.T) {
	assert.Equal(t, 0.0, SnrDbToLinear(math.Inf(-1)))
	assert.InDelta(t, 1.0, SnrDbToLinear(0), 1e-12)
	assert.Equal(t, "TDMA", EqualTdma{}.Name())
}

func TestComputeSumRateDegenerateDuration(t *testing.T) {
	a := model.Assignment{{UserID: 0, SurfaceID: 0, SnrDb: 10}, {UserID: 1, SurfaceID: 1, SnrDb: 20}}
	for _, total := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		rates, sum := ComputeSumRate(2, a, 5e6, total)
		require.Len(t, rates, 2)
		assert.Equal(t, 0.0, sum)
		for i, r := range rates {
			assert.Equal(t, i, r.UserID)
			assert.Equal(t, 0.0, r.RateBps)
			assert.False(t, math.IsNaN(r.RateBps))
		}
	}
}
