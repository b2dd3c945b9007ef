package coinsurance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcalc/pkg/api"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestValidate_Compliant(t *testing.T) {
	res, err := Validate(d(800_000), d(80), d(1_000_000))
	require.NoError(t, err)

	assert.True(t, res.RequiredLimit.Equal(d(800_000)))
	assert.True(t, res.Shortfall.IsZero())
	assert.False(t, res.PenaltyRisk)
	assert.True(t, res.PenaltyPercentage.Equal(d(100)))
	assert.True(t, res.RecoveryCeiling.Equal(d(1_000_000)))
	assert.InDelta(t, 1.0, res.ComplianceRatio, 1e-9)
}

func TestValidate_Underinsured(t *testing.T) {
	res, err := Validate(d(600_000), d(80), d(1_000_000))
	require.NoError(t, err)

	assert.True(t, res.RequiredLimit.Equal(d(800_000)))
	assert.True(t, res.Shortfall.Equal(d(200_000)))
	assert.True(t, res.PenaltyRisk)
	assert.True(t, res.PenaltyPercentage.Equal(d(75)))
	assert.True(t, res.RecoveryCeiling.Equal(d(600_000)))
	assert.InDelta(t, 0.75, res.ComplianceRatio, 1e-9)
}

func TestValidate_Invariants(t *testing.T) {
	cases := []struct {
		name                   string
		limit, percent, rcCost int64
	}{
		{"exactly compliant", 720_000, 90, 800_000},
		{"overinsured", 1_200_000, 80, 1_000_000},
		{"deeply underinsured", 100_000, 100, 2_000_000},
		{"low coinsurance percent", 50_000, 10, 400_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Validate(d(tc.limit), d(tc.percent), d(tc.rcCost))
			require.NoError(t, err)

			// penalty percentage is 100 exactly when there is no shortfall
			assert.Equal(t, res.Shortfall.IsZero(), res.PenaltyPercentage.Equal(d(100)))
			// recovery ceiling never exceeds replacement cost
			assert.True(t, res.RecoveryCeiling.LessThanOrEqual(d(tc.rcCost)))
			assert.True(t, res.Shortfall.Sign() >= 0)
		})
	}
}

func TestValidate_MissingInput(t *testing.T) {
	cases := []struct {
		name                   string
		limit, percent, rcCost int64
	}{
		{"zero limit", 0, 80, 1_000_000},
		{"negative limit", -1, 80, 1_000_000},
		{"zero percent", 500_000, 0, 1_000_000},
		{"zero replacement cost", 500_000, 80, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(d(tc.limit), d(tc.percent), d(tc.rcCost))
			require.ErrorIs(t, err, api.ErrMissingInput)
		})
	}
}

func TestPayment_PenaltyApplied(t *testing.T) {
	res, err := Payment(d(500_000), d(600_000), d(80), d(1_000_000), d(5_000))
	require.NoError(t, err)

	// 600k/800k * 500k = 375k, minus 5k deductible
	assert.True(t, res.PaymentAmount.Equal(d(370_000)), "got %s", res.PaymentAmount)
	assert.True(t, res.PenaltyApplied)
	// unpenalized payment would have been 495k
	assert.True(t, res.PenaltyImpact.Equal(d(125_000)), "got %s", res.PenaltyImpact)
	assert.True(t, res.DeductibleApplied.Equal(d(5_000)))
	assert.True(t, res.RecoveryPercentage.Equal(d(74)))
}

func TestPayment_NoPenalty(t *testing.T) {
	res, err := Payment(d(500_000), d(800_000), d(80), d(1_000_000), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, res.PaymentAmount.Equal(d(500_000)))
	assert.False(t, res.PenaltyApplied)
	assert.True(t, res.PenaltyImpact.IsZero())
	assert.True(t, res.RecoveryPercentage.Equal(d(100)))
}

func TestPayment_CappedAtLimit(t *testing.T) {
	res, err := Payment(d(900_000), d(800_000), d(80), d(1_000_000), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.PaymentAmount.Equal(d(800_000)))
}

func TestPayment_DeductibleFloorsAtZero(t *testing.T) {
	res, err := Payment(d(1_000), d(800_000), d(80), d(1_000_000), d(5_000))
	require.NoError(t, err)
	assert.True(t, res.PaymentAmount.IsZero())
	assert.True(t, res.RecoveryPercentage.IsZero())
}

func TestPayment_ZeroLoss(t *testing.T) {
	res, err := Payment(decimal.Zero, d(800_000), d(80), d(1_000_000), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.PaymentAmount.IsZero())
	// zero denominator returns a defined zero, never NaN/Inf
	assert.True(t, res.RecoveryPercentage.IsZero())
}

func TestPayment_Cap(t *testing.T) {
	// payment never exceeds the building limit and never goes negative
	losses := []int64{0, 1_000, 500_000, 900_000, 5_000_000}
	for _, loss := range losses {
		res, err := Payment(d(loss), d(600_000), d(80), d(1_000_000), d(10_000))
		require.NoError(t, err)
		assert.True(t, res.PaymentAmount.LessThanOrEqual(d(600_000)))
		assert.True(t, res.PaymentAmount.Sign() >= 0)
	}
}

func TestCheckWaiver_Exhaustive(t *testing.T) {
	cases := []struct {
		agreedValue   bool
		clausePresent bool
		wantWaived    bool
	}{
		{true, true, true},
		{true, false, true},
		{false, true, false},
		{false, false, true},
	}
	for _, tc := range cases {
		got := CheckWaiver(tc.agreedValue, tc.clausePresent)
		assert.Equal(t, tc.wantWaived, got.Waived,
			"agreed_value=%v clause_present=%v", tc.agreedValue, tc.clausePresent)
		assert.NotEmpty(t, got.Reason)
	}
}

func TestValidateBlanket(t *testing.T) {
	t.Run("sums locations", func(t *testing.T) {
		res, err := ValidateBlanket(d(800_000), d(80), []Location{
			{ReplacementCost: d(600_000)},
			{ReplacementCost: d(400_000)},
		})
		require.NoError(t, err)
		assert.True(t, res.RequiredLimit.Equal(d(800_000)))
		assert.False(t, res.PenaltyRisk)
	})

	t.Run("empty locations rejected", func(t *testing.T) {
		_, err := ValidateBlanket(d(800_000), d(80), nil)
		require.ErrorIs(t, err, api.ErrMissingInput)
	})
}
