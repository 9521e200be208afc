package domain

import "github.com/gagliardetto/solana-go"

// MaxStrategies is the fixed number of strategy slots in a vault account.
const MaxStrategies = 30

// LockedProfitTracker holds the locked-profit figure reported by the vault and its decay rate.
type LockedProfitTracker struct {
	// LastUpdatedLockedProfit is the profit considered locked at LastReport.
	LastUpdatedLockedProfit uint64 `json:"lastUpdatedLockedProfit,string"`
	// LastReport is the Unix timestamp (seconds) of the last locked-profit update.
	LastReport              uint64 `json:"lastReport,string"`
	// Degradation is the per-second decay rate, a numerator over the degradation denominator.
	Degradation             uint64 `json:"lockedProfitDegradation,string"`
}

// VaultBumps holds the PDA bump seeds stored in the vault account.
type VaultBumps struct {
	VaultBump      uint8 `json:"vaultBump"`
	TokenVaultBump uint8 `json:"tokenVaultBump"`
}

// VaultState is a decoded vault account. It is built once per decode and never mutated.
type VaultState struct {
	Enabled      bool                            `json:"enabled"`
	Bumps        VaultBumps                      `json:"bumps"`
	TotalAmount  uint64                          `json:"totalAmount,string"`
	TokenVault   solana.PublicKey                `json:"tokenVault"`
	FeeVault     solana.PublicKey                `json:"feeVault"`
	TokenMint    solana.PublicKey                `json:"tokenMint"`
	LPMint       solana.PublicKey                `json:"lpMint"`
	Strategies   [MaxStrategies]solana.PublicKey `json:"-"`
	Base         solana.PublicKey                `json:"base"`
	Admin        solana.PublicKey                `json:"admin"`
	Operator     solana.PublicKey                `json:"operator"`
	LockedProfit LockedProfitTracker             `json:"lockedProfitTracker"`
}

// ActiveStrategies returns the strategy slots that are set.
func (v VaultState) ActiveStrategies() []solana.PublicKey {
	var out []solana.PublicKey
	for _, s := range v.Strategies {
		if !s.IsZero() {
			out = append(out, s)
		}
	}
	return out
}
