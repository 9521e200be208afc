package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvariantWarning flags ledger data that is inconsistent but still yields a result.
type InvariantWarning string

const (
	// WarningBalanceExceedsSupply means the wallet holds more LP tokens than the reported supply.
	WarningBalanceExceedsSupply InvariantWarning = "balance_exceeds_supply"
	// WarningVaultDisabled means the vault account is marked disabled.
	WarningVaultDisabled InvariantWarning = "vault_disabled"
)

// ValuationResult is the output of one valuation run over a decoded vault state.
type ValuationResult struct {
	WithdrawableAmount uint64             `json:"withdrawableAmount,string"`
	UnderlyingShare    uint64             `json:"underlyingShare,string"`
	LockedProfit       uint64             `json:"lockedProfit,string"`
	Timestamp          uint64             `json:"timestamp"`
	Warnings           []InvariantWarning `json:"warnings,omitempty"`
}

// TrackedPosition is a vault/wallet pair valued on every snapshot run.
type TrackedPosition struct {
	Vault  string `json:"vault" yaml:"vault"`
	Wallet string `json:"wallet" yaml:"wallet"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Key identifies the position regardless of label.
func (p TrackedPosition) Key() string {
	return p.Vault + ":" + p.Wallet
}

// PositionValuation is a fully resolved valuation of a wallet's vault position.
type PositionValuation struct {
	Vault        string `json:"vault"`
	Wallet       string `json:"wallet"`
	Label        string `json:"label,omitempty"`
	TokenAccount string `json:"tokenAccount"`
	TokenMint    string `json:"tokenMint"`
	LPMint       string `json:"lpMint"`

	TotalAmount        uint64 `json:"totalAmount,string"`
	LockedProfit       uint64 `json:"lockedProfit,string"`
	WithdrawableAmount uint64 `json:"withdrawableAmount,string"`
	TotalSupply        uint64 `json:"totalSupply,string"`
	UserBalance        uint64 `json:"userBalance,string"`
	UnderlyingShare    uint64 `json:"underlyingShare,string"`

	TokenDecimals     uint8           `json:"tokenDecimals"`
	LPDecimals        uint8           `json:"lpDecimals"`
	WithdrawableUI    decimal.Decimal `json:"withdrawableUI"`
	UnderlyingShareUI decimal.Decimal `json:"underlyingShareUI"`

	Warnings []InvariantWarning `json:"warnings,omitempty"`
	ValuedAt time.Time          `json:"valuedAt"`
}
