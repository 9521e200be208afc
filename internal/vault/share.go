package vault

import "github.com/mtlprog/vaultshare/internal/domain"

// ComputeUnderlyingShare converts an LP token balance into underlying units:
// userBalance * withdrawable / totalSupply, floored. Zero supply yields zero.
func ComputeUnderlyingShare(withdrawable, totalSupply, userBalance uint64) (uint64, error) {
	if totalSupply == 0 {
		return 0, nil
	}
	product, err := mulWide(wide(userBalance), wide(withdrawable), "user balance * withdrawable")
	if err != nil {
		return 0, err
	}
	share, err := quoWide(product, wide(totalSupply), "share / total supply")
	if err != nil {
		return 0, err
	}
	return narrow(share, "underlying share")
}

// CheckBalance reports non-fatal inconsistencies between a balance and the supply it belongs to.
func CheckBalance(totalSupply, userBalance uint64) []domain.InvariantWarning {
	if userBalance > totalSupply {
		return []domain.InvariantWarning{domain.WarningBalanceExceedsSupply}
	}
	return nil
}
