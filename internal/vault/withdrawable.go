package vault

import (
	"errors"

	sdkmath "cosmossdk.io/math"

	"github.com/mtlprog/vaultshare/internal/domain"
)

// DegradationDenominator is the protocol's fixed-point scale for the locked-profit decay rate.
const DegradationDenominator uint64 = 1_000_000_000_000

// Calculator applies the locked-profit decay model against a fixed denominator.
type Calculator struct {
	denominator sdkmath.Int
}

var defaultCalculator = &Calculator{denominator: wide(DegradationDenominator)}

// DefaultCalculator returns the calculator for the protocol denominator.
func DefaultCalculator() *Calculator {
	return defaultCalculator
}

// NewCalculator creates a Calculator for an alternate degradation denominator.
func NewCalculator(denominator uint64) (*Calculator, error) {
	if denominator == 0 {
		return nil, errors.New("degradation denominator must be non-zero")
	}
	return &Calculator{denominator: wide(denominator)}, nil
}

// ComputeWithdrawable returns the vault's withdrawable amount at now using the protocol denominator.
func ComputeWithdrawable(state domain.VaultState, now uint64) (uint64, error) {
	return defaultCalculator.Withdrawable(state, now)
}

// RemainingLockedProfit returns how much of the last reported profit is still locked at now.
// Once the decay ratio exceeds the denominator nothing is locked.
func (c *Calculator) RemainingLockedProfit(state domain.VaultState, now uint64) (uint64, error) {
	lp := state.LockedProfit
	if now < lp.LastReport {
		return 0, &ClockSkewError{Now: now, LastReport: lp.LastReport}
	}
	duration := now - lp.LastReport

	ratio, err := mulWide(wide(duration), wide(lp.Degradation), "locked fund ratio")
	if err != nil {
		return 0, err
	}
	if ratio.GT(c.denominator) {
		return 0, nil
	}

	unlocked, err := subWide(c.denominator, ratio, "denominator - locked fund ratio")
	if err != nil {
		return 0, err
	}
	scaled, err := mulWide(wide(lp.LastUpdatedLockedProfit), unlocked, "locked profit * remaining ratio")
	if err != nil {
		return 0, err
	}
	remaining, err := quoWide(scaled, c.denominator, "locked profit / denominator")
	if err != nil {
		return 0, err
	}
	return narrow(remaining, "remaining locked profit")
}

// Withdrawable returns total_amount net of the remaining locked profit.
// A remaining locked profit larger than the total is reported, never clamped.
func (c *Calculator) Withdrawable(state domain.VaultState, now uint64) (uint64, error) {
	locked, err := c.RemainingLockedProfit(state, now)
	if err != nil {
		return 0, err
	}
	return netOfLocked(state.TotalAmount, locked)
}

func netOfLocked(total, locked uint64) (uint64, error) {
	if locked > total {
		return 0, overflowErrorf("remaining locked profit %d exceeds total amount %d", locked, total)
	}
	return total - locked, nil
}
