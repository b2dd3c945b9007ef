package interruption

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcalc/pkg/api"
)

func revs(entries ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		out[i] = json.RawMessage(e)
	}
	return out
}

func TestCalculate_ThirtyDayOutage(t *testing.T) {
	res, err := Calculate(Input{
		StartDate:            "2024-01-01",
		EndDate:              "2024-01-31",
		MonthlyRevenues:      revs("30000"),
		COGSPercent:          40,
		FixedCostsPercent:    20,
		VariableCostsPercent: 10,
		ExtraExpenses:        2000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(30), res.Days)
	assert.True(t, res.AvgMonthlyRevenue.Equal(decimal.NewFromInt(30_000)))
	assert.True(t, res.DailyRevenue.Equal(decimal.NewFromInt(1_000)))
	assert.True(t, res.NetProfitPercent.Equal(decimal.NewFromInt(30)))
	assert.True(t, res.DailyNetProfit.Equal(decimal.NewFromInt(300)))
	assert.True(t, res.TotalLostRevenue.Equal(decimal.NewFromInt(30_000)))
	assert.True(t, res.TotalLostProfit.Equal(decimal.NewFromInt(9_000)))
	assert.True(t, res.TotalBILoss.Equal(decimal.NewFromInt(11_000)))
}

func TestCalculate_Additivity(t *testing.T) {
	for _, extra := range []float64{0, 500, 12345.67} {
		res, err := Calculate(Input{
			StartDate:         "2024-03-01",
			EndDate:           "2024-03-16",
			MonthlyRevenues:   revs("60000", "90000"),
			COGSPercent:       50,
			FixedCostsPercent: 10,
			ExtraExpenses:     extra,
		})
		require.NoError(t, err)
		want := res.TotalLostProfit.Add(decimal.NewFromFloat(extra))
		assert.True(t, res.TotalBILoss.Equal(want),
			"total_bi_loss %s != lost_profit %s + extra %v", res.TotalBILoss, res.TotalLostProfit, extra)
	}
}

func TestCalculate_LenientRevenueParsing(t *testing.T) {
	t.Run("numeric strings accepted", func(t *testing.T) {
		res, err := Calculate(Input{
			StartDate:       "2024-01-01",
			EndDate:         "2024-01-31",
			MonthlyRevenues: revs(`"30000"`, "30000"),
		})
		require.NoError(t, err)
		assert.True(t, res.AvgMonthlyRevenue.Equal(decimal.NewFromInt(30_000)))
	})

	t.Run("garbage entries skipped", func(t *testing.T) {
		res, err := Calculate(Input{
			StartDate:       "2024-01-01",
			EndDate:         "2024-01-31",
			MonthlyRevenues: revs("30000", `"n/a"`, "true"),
		})
		require.NoError(t, err)
		assert.True(t, res.AvgMonthlyRevenue.Equal(decimal.NewFromInt(30_000)))
	})

	t.Run("all unparseable averages to zero", func(t *testing.T) {
		res, err := Calculate(Input{
			StartDate:       "2024-01-01",
			EndDate:         "2024-01-31",
			MonthlyRevenues: revs(`"n/a"`, `"pending"`),
		})
		require.NoError(t, err)
		assert.True(t, res.AvgMonthlyRevenue.IsZero())
		assert.True(t, res.TotalBILoss.IsZero())
	})
}

func TestCalculate_SameDay(t *testing.T) {
	res, err := Calculate(Input{
		StartDate:       "2024-01-15",
		EndDate:         "2024-01-15",
		MonthlyRevenues: revs("30000"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Days)
	assert.True(t, res.TotalLostRevenue.IsZero())
}

func TestCalculate_EndBeforeStart(t *testing.T) {
	_, err := Calculate(Input{
		StartDate:       "2024-02-01",
		EndDate:         "2024-01-01",
		MonthlyRevenues: revs("30000"),
	})
	require.ErrorIs(t, err, api.ErrInvalidRange)
}

func TestCalculate_BadInputs(t *testing.T) {
	base := Input{
		StartDate:       "2024-01-01",
		EndDate:         "2024-01-31",
		MonthlyRevenues: revs("30000"),
	}

	t.Run("bad start date", func(t *testing.T) {
		in := base
		in.StartDate = "January 1st"
		_, err := Calculate(in)
		require.ErrorIs(t, err, api.ErrMissingInput)
	})
	t.Run("empty revenues", func(t *testing.T) {
		in := base
		in.MonthlyRevenues = nil
		_, err := Calculate(in)
		require.ErrorIs(t, err, api.ErrMissingInput)
	})
	t.Run("negative extra expenses", func(t *testing.T) {
		in := base
		in.ExtraExpenses = -1
		_, err := Calculate(in)
		require.ErrorIs(t, err, api.ErrMissingInput)
	})
	t.Run("negative cost percent", func(t *testing.T) {
		in := base
		in.COGSPercent = -5
		_, err := Calculate(in)
		require.ErrorIs(t, err, api.ErrMissingInput)
	})
}

func TestCalculate_UnprofitableNotClamped(t *testing.T) {
	res, err := Calculate(Input{
		StartDate:            "2024-01-01",
		EndDate:              "2024-01-31",
		MonthlyRevenues:      revs("30000"),
		COGSPercent:          70,
		FixedCostsPercent:    30,
		VariableCostsPercent: 20,
	})
	require.NoError(t, err)

	// 100 - 70 - 30 - 20 = -20: a genuinely unprofitable operation
	assert.True(t, res.NetProfitPercent.Equal(decimal.NewFromInt(-20)))
	assert.True(t, res.TotalLostProfit.Sign() < 0)
}
