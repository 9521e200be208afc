package vault

import (
	"time"

	"github.com/mtlprog/vaultshare/internal/domain"
)

// Pipeline runs decode, locked-profit decay and share conversion as one valuation.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	calc *Calculator
	now  func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCalculator overrides the protocol-denominator calculator.
func WithCalculator(c *Calculator) PipelineOption {
	return func(p *Pipeline) { p.calc = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a Pipeline using the protocol denominator and the system clock.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{calc: defaultCalculator, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate decodes raw account bytes and values a balance against them.
func (p *Pipeline) Evaluate(data []byte, totalSupply, userBalance uint64) (domain.ValuationResult, error) {
	state, err := DecodeVaultState(data)
	if err != nil {
		return domain.ValuationResult{}, err
	}
	return p.EvaluateState(state, totalSupply, userBalance)
}

// EvaluateState samples the clock once and values a balance against a decoded state.
func (p *Pipeline) EvaluateState(state domain.VaultState, totalSupply, userBalance uint64) (domain.ValuationResult, error) {
	now := p.now().Unix()
	if now < 0 {
		return domain.ValuationResult{}, &ClockSkewError{Now: 0, LastReport: state.LockedProfit.LastReport}
	}
	return p.EvaluateAt(state, uint64(now), totalSupply, userBalance)
}

// EvaluateAt values a balance against a decoded state at a fixed Unix timestamp.
func (p *Pipeline) EvaluateAt(state domain.VaultState, now, totalSupply, userBalance uint64) (domain.ValuationResult, error) {
	locked, err := p.calc.RemainingLockedProfit(state, now)
	if err != nil {
		return domain.ValuationResult{}, err
	}
	withdrawable, err := netOfLocked(state.TotalAmount, locked)
	if err != nil {
		return domain.ValuationResult{}, err
	}
	share, err := ComputeUnderlyingShare(withdrawable, totalSupply, userBalance)
	if err != nil {
		return domain.ValuationResult{}, err
	}

	warnings := CheckBalance(totalSupply, userBalance)
	if !state.Enabled {
		warnings = append(warnings, domain.WarningVaultDisabled)
	}

	return domain.ValuationResult{
		WithdrawableAmount: withdrawable,
		UnderlyingShare:    share,
		LockedProfit:       locked,
		Timestamp:          now,
		Warnings:           warnings,
	}, nil
}
