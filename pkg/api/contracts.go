// Package api defines the wire contracts shared by the calculation façade,
// the HTTP server, and the CLI.
package api

// Operation names a single calculator dispatch target.
type Operation string

const (
	OpCoinsuranceValidate Operation = "coinsurance.validate"
	OpCoinsurancePayment  Operation = "coinsurance.payment"
	OpCoinsuranceWaiver   Operation = "coinsurance.waiver"
	OpCoinsuranceBlanket  Operation = "coinsurance.blanket"
	OpRomEstimate         Operation = "rom.estimate"
	OpInterruptionLoss    Operation = "interruption.loss"
	OpSettlementGap       Operation = "settlement.gap"
)

// Envelope is the uniform result shape for every calculation. Exactly one
// of Data and Error is set.
type Envelope struct {
	Success  bool                `json:"success"`
	Data     any                 `json:"data"`
	Error    *Error              `json:"error"`
	Metadata CalculationMetadata `json:"metadata"`
}

// Error is the structured failure payload.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CalculationMetadata is the audit header attached to every envelope.
type CalculationMetadata struct {
	CalculationID string    `json:"calculation_id"`
	Operation     Operation `json:"operation"`
	StartedAt     string    `json:"started_at"`
	CompletedAt   string    `json:"completed_at"`
	DurationMs    int64     `json:"duration_ms"`
}

// CoinsuranceValidateInput is the payload for coinsurance.validate.
type CoinsuranceValidateInput struct {
	BuildingLimit      float64 `json:"building_limit"`
	CoinsurancePercent float64 `json:"coinsurance_percent"`
	ReplacementCost    float64 `json:"replacement_cost"`
}

// CoinsurancePaymentInput is the payload for coinsurance.payment.
type CoinsurancePaymentInput struct {
	LossAmount         float64 `json:"loss_amount"`
	BuildingLimit      float64 `json:"building_limit"`
	CoinsurancePercent float64 `json:"coinsurance_percent"`
	ReplacementCost    float64 `json:"replacement_cost"`
	Deductible         float64 `json:"deductible"`
}

// CoinsuranceWaiverInput is the payload for coinsurance.waiver.
type CoinsuranceWaiverInput struct {
	AgreedValue              bool `json:"agreed_value"`
	CoinsuranceClausePresent bool `json:"coinsurance_clause_present"`
}

// BlanketLocation is one insured location in a blanket policy.
type BlanketLocation struct {
	ReplacementCost float64 `json:"replacement_cost"`
}

// CoinsuranceBlanketInput is the payload for coinsurance.blanket.
type CoinsuranceBlanketInput struct {
	BlanketLimit       float64           `json:"blanket_limit"`
	CoinsurancePercent float64           `json:"coinsurance_percent"`
	Locations          []BlanketLocation `json:"locations"`
}

// RomEstimateInput is the payload for rom.estimate.
type RomEstimateInput struct {
	Category   string  `json:"category"`
	Severity   string  `json:"severity"`
	SquareFeet float64 `json:"square_feet"`
}

// SettlementGapInput is the payload for settlement.gap. Margin is optional;
// zero means the engine's default negotiation margin.
type SettlementGapInput struct {
	OfferAmount float64 `json:"offer_amount"`
	Valuation   float64 `json:"valuation"`
	Margin      float64 `json:"margin,omitempty"`
}
