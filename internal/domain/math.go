package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// UIAmount converts a raw base-unit token amount into its decimal UI value.
func UIAmount(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// FormatUIAmount renders a raw amount with its mint decimals, stripping trailing zeros.
func FormatUIAmount(raw uint64, decimals uint8) string {
	return UIAmount(raw, decimals).String()
}
