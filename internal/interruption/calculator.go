// Package interruption computes business-interruption loss: lost revenue and
// profit over an interruption period plus extra expenses incurred to keep
// operating.
package interruption

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"claimcalc/internal/money"
	"claimcalc/pkg/api"
)

// DateLayout is the wire format for interruption period bounds.
const DateLayout = "2006-01-02"

var (
	hundred    = decimal.NewFromInt(100)
	daysPerMon = decimal.NewFromInt(30) // fixed 30-day month convention
)

// Input carries the raw claim facts. MonthlyRevenues is deliberately loose:
// entries arrive from intake forms as numbers or numeric strings, and
// unparseable entries are skipped rather than rejected.
type Input struct {
	StartDate            string            `json:"start_date"`
	EndDate              string            `json:"end_date"`
	MonthlyRevenues      []json.RawMessage `json:"monthly_revenues"`
	COGSPercent          float64           `json:"cogs_percent"`
	FixedCostsPercent    float64           `json:"fixed_costs_percent"`
	VariableCostsPercent float64           `json:"variable_costs_percent"`
	ExtraExpenses        float64           `json:"extra_expenses"`
}

// Result is the interruption loss breakdown.
type Result struct {
	Days              int64           `json:"days"`
	AvgMonthlyRevenue decimal.Decimal `json:"avg_monthly_revenue"`
	DailyRevenue      decimal.Decimal `json:"daily_revenue"`
	NetProfitPercent  decimal.Decimal `json:"net_profit_percent"`
	DailyNetProfit    decimal.Decimal `json:"daily_net_profit"`
	TotalLostRevenue  decimal.Decimal `json:"total_lost_revenue"`
	TotalLostProfit   decimal.Decimal `json:"total_lost_profit"`
	TotalBILoss       decimal.Decimal `json:"total_bi_loss"`
}

// Calculate computes the loss over the interruption period.
// Cost percentages are not clamped: a combined structure above 100% simply
// yields a negative net profit, which reflects an unprofitable operation.
func Calculate(in Input) (*Result, error) {
	start, err := time.Parse(DateLayout, in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", api.ErrMissingInput)
	}
	end, err := time.Parse(DateLayout, in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", api.ErrMissingInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", api.ErrInvalidRange)
	}
	if len(in.MonthlyRevenues) == 0 {
		return nil, fmt.Errorf("%w: monthly_revenues must not be empty", api.ErrMissingInput)
	}
	if in.COGSPercent < 0 || in.FixedCostsPercent < 0 || in.VariableCostsPercent < 0 {
		return nil, fmt.Errorf("%w: cost percentages must not be negative", api.ErrMissingInput)
	}
	if in.ExtraExpenses < 0 {
		return nil, fmt.Errorf("%w: extra_expenses must not be negative", api.ErrMissingInput)
	}

	days := int64(math.Ceil(end.Sub(start).Hours() / 24))

	avgMonthly := money.Mean(parseRevenues(in.MonthlyRevenues))
	dailyRevenue := avgMonthly.Div(daysPerMon)

	grossProfitPct := hundred.Sub(decimal.NewFromFloat(in.COGSPercent))
	netProfitPct := grossProfitPct.
		Sub(decimal.NewFromFloat(in.FixedCostsPercent)).
		Sub(decimal.NewFromFloat(in.VariableCostsPercent))

	dailyNetProfit := dailyRevenue.Mul(netProfitPct.Div(hundred))

	dayCount := decimal.NewFromInt(days)
	totalLostRevenue := dailyRevenue.Mul(dayCount)
	totalLostProfit := dailyNetProfit.Mul(dayCount)
	extra := decimal.NewFromFloat(in.ExtraExpenses)

	return &Result{
		Days:              days,
		AvgMonthlyRevenue: money.Round(avgMonthly),
		DailyRevenue:      money.Round(dailyRevenue),
		NetProfitPercent:  money.Round(netProfitPct),
		DailyNetProfit:    money.Round(dailyNetProfit),
		TotalLostRevenue:  money.Round(totalLostRevenue),
		TotalLostProfit:   money.Round(totalLostProfit),
		TotalBILoss:       money.Round(totalLostProfit.Add(extra)),
	}, nil
}

// parseRevenues coerces each raw entry to a decimal, accepting JSON numbers
// and numeric strings. Unparseable entries are dropped; if everything is
// unparseable the caller ends up averaging an empty slice, which is zero.
func parseRevenues(raw []json.RawMessage) []decimal.Decimal {
	var out []decimal.Decimal
	for _, r := range raw {
		var num json.Number
		if err := json.Unmarshal(r, &num); err == nil {
			if d, err := decimal.NewFromString(num.String()); err == nil {
				out = append(out, d)
				continue
			}
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if d, err := decimal.NewFromString(s); err == nil {
				out = append(out, d)
			}
		}
	}
	return out
}
