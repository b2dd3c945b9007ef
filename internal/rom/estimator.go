// Package rom produces rough-order-of-magnitude repair/replacement cost
// estimates for early claim triage. Not a contractor-grade estimate.
package rom

import (
	"fmt"

	"github.com/shopspring/decimal"

	"claimcalc/internal/money"
	"claimcalc/pkg/api"
)

// Category is the damage category driving the base rate.
type Category string

// Severity scales the base rate.
type Severity string

const (
	CategoryFire       Category = "fire"
	CategoryWater      Category = "water"
	CategoryRoof       Category = "roof"
	CategoryContents   Category = "contents"
	CategoryStructural Category = "structural"

	SeverityMinor     Severity = "minor"
	SeverityModerate  Severity = "moderate"
	SeveritySevere    Severity = "severe"
	SeverityTotalLoss Severity = "total_loss"
)

// RateTable holds the per-category base rates ($/sqft) and severity
// multipliers. Tables are passed in explicitly so they can be swapped per
// jurisdiction or product without touching the estimator.
type RateTable struct {
	BaseRates         map[Category]decimal.Decimal
	Multipliers       map[Severity]decimal.Decimal
	DefaultBaseRate   decimal.Decimal
	DefaultMultiplier decimal.Decimal
}

// DefaultRateTable returns the compiled-in rates.
func DefaultRateTable() RateTable {
	return RateTable{
		BaseRates: map[Category]decimal.Decimal{
			CategoryFire:       decimal.NewFromInt(150),
			CategoryWater:      decimal.NewFromInt(120),
			CategoryRoof:       decimal.NewFromInt(200),
			CategoryContents:   decimal.NewFromInt(80),
			CategoryStructural: decimal.NewFromInt(250),
		},
		Multipliers: map[Severity]decimal.Decimal{
			SeverityMinor:     decimal.NewFromFloat(0.5),
			SeverityModerate:  decimal.NewFromFloat(1.0),
			SeveritySevere:    decimal.NewFromFloat(2.0),
			SeverityTotalLoss: decimal.NewFromFloat(3.5),
		},
		DefaultBaseRate:   decimal.NewFromInt(150),
		DefaultMultiplier: decimal.NewFromFloat(1.0),
	}
}

// Result is a single ROM estimate with its inputs echoed for audit.
type Result struct {
	Estimate           decimal.Decimal `json:"estimate"`
	BaseRate           decimal.Decimal `json:"base_rate"`
	SeverityMultiplier float64         `json:"severity_multiplier"`
	CalculationTrace   string          `json:"calculation_trace"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// Estimator computes ROM estimates against a rate table.
type Estimator struct {
	table RateTable
}

// NewEstimator returns an estimator over the default rate table.
func NewEstimator() *Estimator {
	return NewEstimatorWithTable(DefaultRateTable())
}

// NewEstimatorWithTable returns an estimator over a custom rate table.
func NewEstimatorWithTable(table RateTable) *Estimator {
	return &Estimator{table: table}
}

// Estimate computes base_rate * square_feet * severity_multiplier.
// Unknown categories and severities fall back to the table defaults; the
// substitution is reported as a warning rather than an error so that a
// caller typo never changes the numeric contract.
func (e *Estimator) Estimate(category Category, severity Severity, squareFeet float64) (*Result, error) {
	if squareFeet <= 0 {
		return nil, fmt.Errorf("%w: square_feet must be positive", api.ErrInvalidRange)
	}

	var warnings []string

	baseRate, ok := e.table.BaseRates[category]
	if !ok {
		baseRate = e.table.DefaultBaseRate
		warnings = append(warnings, fmt.Sprintf("unknown category %q, defaulting base rate to %s/sqft", category, baseRate))
	}
	multiplier, ok := e.table.Multipliers[severity]
	if !ok {
		multiplier = e.table.DefaultMultiplier
		warnings = append(warnings, fmt.Sprintf("unknown severity %q, defaulting multiplier to %s", severity, multiplier))
	}

	sqft := decimal.NewFromFloat(squareFeet)
	estimate := money.Round(baseRate.Mul(sqft).Mul(multiplier))

	return &Result{
		Estimate:           estimate,
		BaseRate:           baseRate,
		SeverityMultiplier: multiplier.InexactFloat64(),
		CalculationTrace: fmt.Sprintf("$%s/sqft x %s sqft x %s = $%s",
			baseRate, sqft, multiplier, estimate),
		Warnings: warnings,
	}, nil
}
