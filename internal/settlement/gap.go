// Package settlement compares a claimed valuation against a received offer
// and derives the negotiation gap and a recommended counter-offer.
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"claimcalc/internal/money"
	"claimcalc/pkg/api"
)

// DefaultNegotiationMargin leaves 5% of negotiation room below the claimed
// valuation when recommending a counter-offer. Business policy, not math;
// override through AnalyzeGapWithMargin.
var DefaultNegotiationMargin = decimal.NewFromFloat(0.95)

// Result is the gap analysis output.
type Result struct {
	Gap                decimal.Decimal `json:"gap"`
	GapPercent         decimal.Decimal `json:"gap_percent"`
	RecommendedCounter decimal.Decimal `json:"recommended_counter"`
}

// AnalyzeGap compares an offer to a valuation using the default margin.
func AnalyzeGap(offerAmount, valuation decimal.Decimal) (*Result, error) {
	return AnalyzeGapWithMargin(offerAmount, valuation, DefaultNegotiationMargin)
}

// AnalyzeGapWithMargin compares an offer to a valuation. The gap may be
// negative when the offer exceeds the valuation. A non-positive valuation is
// rejected; the gap-percent zero-denominator guard therefore only matters
// for callers bypassing validation.
func AnalyzeGapWithMargin(offerAmount, valuation, margin decimal.Decimal) (*Result, error) {
	if offerAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: offer_amount must not be negative", api.ErrMissingInput)
	}
	if valuation.Sign() <= 0 {
		return nil, fmt.Errorf("%w: valuation must be positive", api.ErrMissingInput)
	}
	if margin.Sign() <= 0 || margin.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: negotiation margin must be in (0, 1]", api.ErrInvalidRange)
	}

	gap := valuation.Sub(offerAmount)

	gapPercent := decimal.Zero
	if valuation.Sign() > 0 {
		gapPercent = money.Percent(gap, valuation)
	}

	return &Result{
		Gap:                money.Round(gap),
		GapPercent:         money.Round(gapPercent),
		RecommendedCounter: money.Round(valuation.Mul(margin)),
	}, nil
}
