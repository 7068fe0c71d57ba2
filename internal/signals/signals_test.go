package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftwatch-systems/driftwatch/internal/models"
)

func TestRandomSamplerRanges(t *testing.T) {
	sampler := NewRandomSampler(1)

	for i := 0; i < 1000; i++ {
		sig := sampler.Sample("r1")
		assert.GreaterOrEqual(t, sig.FPRate, 0.0)
		assert.LessOrEqual(t, sig.FPRate, 0.5)
		assert.GreaterOrEqual(t, sig.TPRate, 0.0)
		assert.LessOrEqual(t, sig.TPRate, 1.0)
		assert.GreaterOrEqual(t, sig.AlertVolume, 0)
		assert.LessOrEqual(t, sig.AlertVolume, 500)

		// Rates carry at most 2 decimal places.
		assert.Equal(t, sig.FPRate, float64(int(sig.FPRate*100+0.5))/100)
		assert.Equal(t, sig.TPRate, float64(int(sig.TPRate*100+0.5))/100)
	}
}

func TestRandomSamplerSeeded(t *testing.T) {
	a := NewRandomSampler(42)
	b := NewRandomSampler(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Sample("r1"), b.Sample("r1"))
	}
}

func TestFixedProvider(t *testing.T) {
	want := models.QualitySignals{FPRate: 0.2, TPRate: 0.8, AlertVolume: 100}
	provider := Fixed{Signals: want}

	assert.Equal(t, want, provider.Sample("r1"))
	assert.Equal(t, want, provider.Sample("r2"))
}
