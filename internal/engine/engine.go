// Package engine is the stateless dispatch layer over the claim calculators.
// It decodes raw JSON payloads into strict input structs, invokes the right
// calculator, and wraps every outcome in the uniform response envelope.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"claimcalc/internal/audit"
	"claimcalc/internal/coinsurance"
	"claimcalc/internal/interruption"
	"claimcalc/internal/rom"
	"claimcalc/internal/settlement"
	"claimcalc/pkg/api"
)

// handler decodes a payload and runs one calculator.
type handler func(e *Engine, payload json.RawMessage) (any, error)

// registry maps operation names to their handlers. Read-only after init.
var registry = map[api.Operation]handler{
	api.OpCoinsuranceValidate: runCoinsuranceValidate,
	api.OpCoinsurancePayment:  runCoinsurancePayment,
	api.OpCoinsuranceWaiver:   runCoinsuranceWaiver,
	api.OpCoinsuranceBlanket:  runCoinsuranceBlanket,
	api.OpRomEstimate:         runRomEstimate,
	api.OpInterruptionLoss:    runInterruptionLoss,
	api.OpSettlementGap:       runSettlementGap,
}

// Operations lists the registered operation names.
func Operations() []api.Operation {
	ops := make([]api.Operation, 0, len(registry))
	for op := range registry {
		ops = append(ops, op)
	}
	return ops
}

// Engine dispatches calculations. Safe for concurrent use; all state is
// read-only configuration.
type Engine struct {
	rom      *rom.Estimator
	margin   decimal.Decimal
	recorder audit.Recorder
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRateTable overrides the ROM rate table.
func WithRateTable(table rom.RateTable) Option {
	return func(e *Engine) { e.rom = rom.NewEstimatorWithTable(table) }
}

// WithNegotiationMargin overrides the settlement counter-offer margin.
func WithNegotiationMargin(margin decimal.Decimal) Option {
	return func(e *Engine) { e.margin = margin }
}

// WithRecorder attaches an audit recorder. Recording is best effort: a
// storage failure is logged and never fails the calculation.
func WithRecorder(rec audit.Recorder) Option {
	return func(e *Engine) { e.recorder = rec }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine with default tables and a noop recorder.
func New(opts ...Option) *Engine {
	e := &Engine{
		rom:      rom.NewEstimator(),
		margin:   settlement.DefaultNegotiationMargin,
		recorder: audit.Noop{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate runs one operation against a raw JSON payload and always
// returns an envelope; errors are folded into it, never raised.
func (e *Engine) Calculate(ctx context.Context, op api.Operation, payload json.RawMessage) *api.Envelope {
	started := time.Now().UTC()

	var (
		data    any
		calcErr *api.Error
	)

	h, ok := registry[op]
	switch {
	case !ok:
		calcErr = &api.Error{
			Code:    api.CodeUnknownOperation,
			Message: fmt.Sprintf("unknown operation %q", op),
		}
	default:
		result, err := h(e, payload)
		if err != nil {
			calcErr = &api.Error{Code: api.CodeForError(err), Message: err.Error()}
		} else {
			data = result
		}
	}

	completed := time.Now().UTC()
	env := &api.Envelope{
		Success: calcErr == nil,
		Data:    data,
		Error:   calcErr,
		Metadata: api.CalculationMetadata{
			CalculationID: uuid.New().String(),
			Operation:     op,
			StartedAt:     started.Format(time.RFC3339Nano),
			CompletedAt:   completed.Format(time.RFC3339Nano),
			DurationMs:    completed.Sub(started).Milliseconds(),
		},
	}

	e.record(ctx, env, payload)
	return env
}

func (e *Engine) record(ctx context.Context, env *api.Envelope, payload json.RawMessage) {
	rec := &audit.Record{
		ID:         uuid.MustParse(env.Metadata.CalculationID),
		Operation:  string(env.Metadata.Operation),
		Success:    env.Success,
		DurationMs: env.Metadata.DurationMs,
		Input:      payload,
		CreatedAt:  time.Now().UTC(),
	}
	if env.Error != nil {
		rec.ErrorCode = string(env.Error.Code)
	}
	if env.Data != nil {
		if out, err := json.Marshal(env.Data); err == nil {
			rec.Output = out
		}
	}
	if err := e.recorder.Record(ctx, rec); err != nil {
		e.log.Warn().Err(err).
			Str("calculation_id", env.Metadata.CalculationID).
			Str("operation", string(env.Metadata.Operation)).
			Msg("audit record failed")
	}
}

func decode[T any](payload json.RawMessage) (T, error) {
	var in T
	if len(payload) == 0 {
		return in, fmt.Errorf("%w: empty payload", api.ErrMissingInput)
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return in, fmt.Errorf("%w: %v", api.ErrBadInput, err)
	}
	return in, nil
}

func runCoinsuranceValidate(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[api.CoinsuranceValidateInput](payload)
	if err != nil {
		return nil, err
	}
	return coinsurance.Validate(
		decimal.NewFromFloat(in.BuildingLimit),
		decimal.NewFromFloat(in.CoinsurancePercent),
		decimal.NewFromFloat(in.ReplacementCost),
	)
}

func runCoinsurancePayment(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[api.CoinsurancePaymentInput](payload)
	if err != nil {
		return nil, err
	}
	return coinsurance.Payment(
		decimal.NewFromFloat(in.LossAmount),
		decimal.NewFromFloat(in.BuildingLimit),
		decimal.NewFromFloat(in.CoinsurancePercent),
		decimal.NewFromFloat(in.ReplacementCost),
		decimal.NewFromFloat(in.Deductible),
	)
}

func runCoinsuranceWaiver(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[api.CoinsuranceWaiverInput](payload)
	if err != nil {
		return nil, err
	}
	return coinsurance.CheckWaiver(in.AgreedValue, in.CoinsuranceClausePresent), nil
}

func runCoinsuranceBlanket(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[api.CoinsuranceBlanketInput](payload)
	if err != nil {
		return nil, err
	}
	locations := make([]coinsurance.Location, len(in.Locations))
	for i, loc := range in.Locations {
		locations[i] = coinsurance.Location{ReplacementCost: decimal.NewFromFloat(loc.ReplacementCost)}
	}
	return coinsurance.ValidateBlanket(
		decimal.NewFromFloat(in.BlanketLimit),
		decimal.NewFromFloat(in.CoinsurancePercent),
		locations,
	)
}

func runRomEstimate(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[api.RomEstimateInput](payload)
	if err != nil {
		return nil, err
	}
	res, err := e.rom.Estimate(rom.Category(in.Category), rom.Severity(in.Severity), in.SquareFeet)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		e.log.Warn().Str("operation", string(api.OpRomEstimate)).Msg(w)
	}
	return res, nil
}

func runInterruptionLoss(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[interruption.Input](payload)
	if err != nil {
		return nil, err
	}
	return interruption.Calculate(in)
}

func runSettlementGap(e *Engine, payload json.RawMessage) (any, error) {
	in, err := decode[api.SettlementGapInput](payload)
	if err != nil {
		return nil, err
	}
	margin := e.margin
	if in.Margin != 0 {
		margin = decimal.NewFromFloat(in.Margin)
	}
	return settlement.AnalyzeGapWithMargin(
		decimal.NewFromFloat(in.OfferAmount),
		decimal.NewFromFloat(in.Valuation),
		margin,
	)
}
