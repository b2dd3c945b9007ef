// Package coinsurance implements the coinsurance compliance calculator:
// penalty exposure when a policy's insured limit sits below the
// coinsurance-required amount, and the adjusted claim payment that follows.
package coinsurance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"claimcalc/internal/money"
	"claimcalc/pkg/api"
)

var hundred = decimal.NewFromInt(100)

// Result is the compliance check output.
type Result struct {
	RequiredLimit     decimal.Decimal `json:"required_limit"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	PenaltyRisk       bool            `json:"penalty_risk"`
	PenaltyPercentage decimal.Decimal `json:"penalty_percentage"`
	RecoveryCeiling   decimal.Decimal `json:"recovery_ceiling"`
	ComplianceRatio   float64         `json:"compliance_ratio"`
}

// PaymentResult is the adjusted claim payment output.
type PaymentResult struct {
	LossAmount         decimal.Decimal `json:"loss_amount"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	PenaltyApplied     bool            `json:"penalty_applied"`
	PenaltyImpact      decimal.Decimal `json:"penalty_impact"`
	DeductibleApplied  decimal.Decimal `json:"deductible_applied"`
	RecoveryPercentage decimal.Decimal `json:"recovery_percentage"`
}

// WaiverStatus is the outcome of a coinsurance waiver check.
type WaiverStatus struct {
	Waived bool   `json:"waived"`
	Reason string `json:"reason"`
}

// Location is a single insured location under a blanket policy.
type Location struct {
	ReplacementCost decimal.Decimal `json:"replacement_cost"`
}

// Validate computes penalty exposure for a single-location policy.
// All three inputs must be positive; zero or negative values are rejected
// rather than defaulted.
func Validate(buildingLimit, coinsurancePercent, replacementCost decimal.Decimal) (*Result, error) {
	if buildingLimit.Sign() <= 0 {
		return nil, fmt.Errorf("%w: building_limit must be positive", api.ErrMissingInput)
	}
	if coinsurancePercent.Sign() <= 0 {
		return nil, fmt.Errorf("%w: coinsurance_percent must be positive", api.ErrMissingInput)
	}
	if replacementCost.Sign() <= 0 {
		return nil, fmt.Errorf("%w: replacement_cost must be positive", api.ErrMissingInput)
	}

	requiredLimit := replacementCost.Mul(coinsurancePercent.Div(hundred))
	shortfall := decimal.Max(decimal.Zero, requiredLimit.Sub(buildingLimit))
	penaltyRisk := shortfall.Sign() > 0

	penaltyPct := hundred
	recoveryCeiling := replacementCost
	if penaltyRisk {
		penaltyPct = money.Percent(buildingLimit, requiredLimit)
		recoveryCeiling = buildingLimit
	}

	return &Result{
		RequiredLimit:     money.Round(requiredLimit),
		Shortfall:         money.Round(shortfall),
		PenaltyRisk:       penaltyRisk,
		PenaltyPercentage: money.Round(penaltyPct),
		RecoveryCeiling:   money.Round(recoveryCeiling),
		ComplianceRatio:   buildingLimit.Div(requiredLimit).InexactFloat64(),
	}, nil
}

// Payment computes the claim payment under the policy's coinsurance terms.
// deductible may be zero. A zero loss amount yields a zero recovery
// percentage instead of a division error.
func Payment(lossAmount, buildingLimit, coinsurancePercent, replacementCost, deductible decimal.Decimal) (*PaymentResult, error) {
	if lossAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: loss_amount must not be negative", api.ErrMissingInput)
	}
	if deductible.Sign() < 0 {
		return nil, fmt.Errorf("%w: deductible must not be negative", api.ErrMissingInput)
	}

	check, err := Validate(buildingLimit, coinsurancePercent, replacementCost)
	if err != nil {
		return nil, err
	}

	requiredLimit := replacementCost.Mul(coinsurancePercent.Div(hundred))
	capped := decimal.Min(lossAmount, buildingLimit)

	payment := capped
	if check.PenaltyRisk {
		payment = decimal.Min(buildingLimit.Div(requiredLimit).Mul(lossAmount), buildingLimit)
	}
	payment = decimal.Max(decimal.Zero, payment.Sub(deductible))

	// Penalty impact is measured against the unpenalized payment.
	impact := decimal.Max(decimal.Zero, capped.Sub(deductible).Sub(payment))

	recoveryPct := decimal.Zero
	if lossAmount.Sign() > 0 {
		recoveryPct = money.Percent(payment, lossAmount)
	}

	return &PaymentResult{
		LossAmount:         money.Round(lossAmount),
		PaymentAmount:      money.Round(payment),
		PenaltyApplied:     check.PenaltyRisk,
		PenaltyImpact:      money.Round(impact),
		DeductibleApplied:  money.Round(deductible),
		RecoveryPercentage: money.Round(recoveryPct),
	}, nil
}

// CheckWaiver resolves the coinsurance waiver truth table. The clause is
// waived under an agreed-value provision, and trivially absent when the
// policy carries no coinsurance clause at all.
func CheckWaiver(agreedValue, coinsuranceClausePresent bool) WaiverStatus {
	switch {
	case !coinsuranceClausePresent:
		return WaiverStatus{Waived: true, Reason: "policy has no coinsurance clause"}
	case agreedValue:
		return WaiverStatus{Waived: true, Reason: "agreed value provision suspends the coinsurance clause"}
	default:
		return WaiverStatus{Waived: false, Reason: "coinsurance clause in force"}
	}
}

// ValidateBlanket checks blanket coverage across multiple locations by
// summing their replacement costs. An empty location list sums to zero and
// is rejected the same way a zero replacement cost would be.
func ValidateBlanket(blanketLimit, coinsurancePercent decimal.Decimal, locations []Location) (*Result, error) {
	total := decimal.Zero
	for _, loc := range locations {
		total = total.Add(loc.ReplacementCost)
	}
	return Validate(blanketLimit, coinsurancePercent, total)
}
