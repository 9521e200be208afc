package vault

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mtlprog/vaultshare/internal/domain"
)

func TestComputeUnderlyingShare(t *testing.T) {
	tests := []struct {
		name         string
		withdrawable uint64
		supply       uint64
		balance      uint64
		want         uint64
	}{
		{"quarter of supply", 500_000, 200_000, 50_000, 125_000},
		{"floor division", 10, 3, 1, 3},
		{"zero balance", 500_000, 200_000, 0, 0},
		{"zero withdrawable", 0, 200_000, 50_000, 0},
		{"zero supply", 500_000, 0, 50_000, 0},
		{"zero supply and balance", math.MaxUint64, 0, math.MaxUint64, 0},
		{"wide multiplication", math.MaxUint64, math.MaxUint64, math.MaxUint64 / 2, math.MaxUint64 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeUnderlyingShare(tt.withdrawable, tt.supply, tt.balance)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeUnderlyingShare(%d, %d, %d) = %d, want %d",
					tt.withdrawable, tt.supply, tt.balance, got, tt.want)
			}
		})
	}
}

func TestComputeUnderlyingShareWholeSupplyRecoversWithdrawable(t *testing.T) {
	for _, w := range []uint64{0, 1, 7, 1_000_000, math.MaxUint64} {
		for _, s := range []uint64{1, 3, 999_983, math.MaxUint64} {
			got, err := ComputeUnderlyingShare(w, s, s)
			if err != nil {
				t.Fatalf("w=%d s=%d: unexpected error: %v", w, s, err)
			}
			if got != w {
				t.Errorf("w=%d s=%d: share = %d, want %d", w, s, got, w)
			}
		}
	}
}

func TestComputeUnderlyingShareNarrowingOverflow(t *testing.T) {
	// A balance above supply can push the result past uint64.
	_, err := ComputeUnderlyingShare(math.MaxUint64, 1, 2)
	if !errors.Is(err, ErrArithmeticOverflow) {
		t.Errorf("err = %v, want ErrArithmeticOverflow", err)
	}
}

func TestCheckBalance(t *testing.T) {
	tests := []struct {
		name    string
		supply  uint64
		balance uint64
		want    []domain.InvariantWarning
	}{
		{"within supply", 100, 40, nil},
		{"whole supply", 100, 100, nil},
		{"exceeds supply", 100, 101, []domain.InvariantWarning{domain.WarningBalanceExceedsSupply}},
		{"zero supply with balance", 0, 1, []domain.InvariantWarning{domain.WarningBalanceExceedsSupply}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckBalance(tt.supply, tt.balance); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CheckBalance(%d, %d) = %v, want %v", tt.supply, tt.balance, got, tt.want)
			}
		})
	}
}
