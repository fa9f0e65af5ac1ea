package confidence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDistance_Monotonic(t *testing.T) {
	distances := []float64{0, 0.1, 0.5, 1, 2, 5, 10, 100}
	prev := 1.1
	for _, d := range distances {
		conf := FromDistance(d, DefaultAlpha)
		assert.LessOrEqual(t, conf, prev, "confidence must decrease with distance %v", d)
		assert.GreaterOrEqual(t, conf, 0.0)
		assert.LessOrEqual(t, conf, 1.0)
		prev = conf
	}
}

func TestFromDistance_ZeroIsCertain(t *testing.T) {
	assert.Equal(t, 1.0, FromDistance(0, DefaultAlpha))
}

func TestFromDistance_BadInputs(t *testing.T) {
	assert.Equal(t, 0.0, FromDistance(math.NaN(), DefaultAlpha))
	assert.Equal(t, 0.0, FromDistance(math.Inf(1), DefaultAlpha))
	assert.Equal(t, 0.0, FromDistance(-1, DefaultAlpha))
}

func TestAggregates_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil, DefaultAlpha))
	assert.Equal(t, 0.0, Top(nil, DefaultAlpha))
	assert.Equal(t, 0.0, Average([]float64{}, DefaultAlpha))
	assert.Equal(t, 0.0, Top([]float64{}, DefaultAlpha))
}

func TestAggregates_TwoHits(t *testing.T) {
	// exp(-0.35*0.1) ~= 0.966, exp(-0.35*2.0) ~= 0.497
	distances := []float64{0.1, 2.0}

	assert.InDelta(t, 0.966, FromDistance(0.1, DefaultAlpha), 0.001)
	assert.InDelta(t, 0.497, FromDistance(2.0, DefaultAlpha), 0.001)
	assert.InDelta(t, 0.731, Average(distances, DefaultAlpha), 0.001)
	assert.InDelta(t, 0.966, Top(distances, DefaultAlpha), 0.001)
}
