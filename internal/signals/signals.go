// Package signals provides rule-quality signal sampling. The random
// sampler stands in for a real quality-measurement pipeline; callers
// depend on the Provider interface so it can be swapped for a real
// estimator without touching the lifecycle code.
package signals

import (
	"math"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/driftwatch-systems/driftwatch/internal/models"
)

// Provider samples quality signals for a rule.
type Provider interface {
	Sample(ruleID string) models.QualitySignals
}

// RandomSampler draws signals from uniform distributions: fp_rate in
// [0, 0.5], tp_rate in [0, 1], alert_volume in [0, 500]. Rates are
// rounded to 2 decimal places.
type RandomSampler struct {
	faker *gofakeit.Faker
}

// NewRandomSampler returns a sampler seeded from crypto-quality
// randomness. Pass a non-zero seed for reproducible draws.
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{faker: gofakeit.New(seed)}
}

func (s *RandomSampler) Sample(ruleID string) models.QualitySignals {
	return models.QualitySignals{
		FPRate:      round2(s.faker.Float64Range(0, 0.5)),
		TPRate:      round2(s.faker.Float64Range(0, 1.0)),
		AlertVolume: s.faker.Number(0, 500),
	}
}

// Fixed always returns the same signals. Used in tests to make drift
// scoring deterministic.
type Fixed struct {
	Signals models.QualitySignals
}

func (f Fixed) Sample(ruleID string) models.QualitySignals {
	return f.Signals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
