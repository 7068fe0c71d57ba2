package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		fpRate      float64
		tpRate      float64
		alertVolume int
		expected    float64
	}{
		{
			name:        "typical drifting rule",
			fpRate:      0.2,
			tpRate:      0.8,
			alertVolume: 100,
			expected:    3.0, // 0.2*5 + 0.2*5 + 1.0
		},
		{
			name:        "perfect rule",
			fpRate:      0,
			tpRate:      1,
			alertVolume: 0,
			expected:    0,
		},
		{
			name:        "worst case rates",
			fpRate:      1,
			tpRate:      0,
			alertVolume: 0,
			expected:    10,
		},
		{
			name:        "volume only",
			fpRate:      0,
			tpRate:      1,
			alertVolume: 500,
			expected:    5,
		},
		{
			name:        "unbounded above",
			fpRate:      1,
			tpRate:      0,
			alertVolume: 1000,
			expected:    20,
		},
		{
			name:        "rounds to two decimals",
			fpRate:      0.33,
			tpRate:      0.67,
			alertVolume: 7,
			expected:    3.37, // 1.65 + 1.65 + 0.07
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.fpRate, tt.tpRate, tt.alertVolume))
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, Score(0.41, 0.13, 233), Score(0.41, 0.13, 233))
	}
}

func TestSchemaScore(t *testing.T) {
	assert.Equal(t, 2.0, SchemaScore([]string{"d"}, []string{"a"}))
	assert.Equal(t, 0.0, SchemaScore(nil, nil))
	assert.Equal(t, 5.0, SchemaScore([]string{"a", "b", "c"}, []string{"d", "e"}))
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0, SeverityNone},
		{0.01, SeverityLow},
		{2, SeverityLow},
		{2.01, SeverityMedium},
		{3.0, SeverityMedium},
		{5, SeverityMedium},
		{5.01, SeverityHigh},
		{20, SeverityHigh},
		{-1, SeverityNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Severity(tt.score), "score %v", tt.score)
	}
}
