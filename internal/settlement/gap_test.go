package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcalc/pkg/api"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAnalyzeGap_LowOffer(t *testing.T) {
	res, err := AnalyzeGap(d(80_000), d(100_000))
	require.NoError(t, err)

	assert.True(t, res.Gap.Equal(d(20_000)))
	assert.True(t, res.GapPercent.Equal(d(20)))
	assert.True(t, res.RecommendedCounter.Equal(d(95_000)))
}

func TestAnalyzeGap_Sign(t *testing.T) {
	cases := []struct {
		name             string
		offer, valuation int64
		wantSign         int
	}{
		{"offer below valuation", 80_000, 100_000, 1},
		{"offer above valuation", 120_000, 100_000, -1},
		{"offer equals valuation", 100_000, 100_000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := AnalyzeGap(d(tc.offer), d(tc.valuation))
			require.NoError(t, err)
			assert.Equal(t, tc.wantSign, res.Gap.Sign())
		})
	}
}

func TestAnalyzeGap_ZeroOffer(t *testing.T) {
	res, err := AnalyzeGap(decimal.Zero, d(50_000))
	require.NoError(t, err)
	assert.True(t, res.Gap.Equal(d(50_000)))
	assert.True(t, res.GapPercent.Equal(d(100)))
}

func TestAnalyzeGap_InvalidValuation(t *testing.T) {
	for _, v := range []int64{0, -100} {
		_, err := AnalyzeGap(d(80_000), d(v))
		require.ErrorIs(t, err, api.ErrMissingInput)
	}
}

func TestAnalyzeGap_NegativeOffer(t *testing.T) {
	_, err := AnalyzeGap(d(-1), d(100_000))
	require.ErrorIs(t, err, api.ErrMissingInput)
}

func TestAnalyzeGapWithMargin(t *testing.T) {
	t.Run("custom margin", func(t *testing.T) {
		res, err := AnalyzeGapWithMargin(d(80_000), d(100_000), decimal.NewFromFloat(0.9))
		require.NoError(t, err)
		assert.True(t, res.RecommendedCounter.Equal(d(90_000)))
	})

	t.Run("margin out of range", func(t *testing.T) {
		_, err := AnalyzeGapWithMargin(d(80_000), d(100_000), decimal.NewFromFloat(1.5))
		require.ErrorIs(t, err, api.ErrInvalidRange)
		_, err = AnalyzeGapWithMargin(d(80_000), d(100_000), decimal.Zero)
		require.ErrorIs(t, err, api.ErrInvalidRange)
	})
}
