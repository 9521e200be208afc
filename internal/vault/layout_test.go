package vault

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/mtlprog/vaultshare/internal/domain"
)

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func sampleState() domain.VaultState {
	v := domain.VaultState{
		Enabled:     true,
		Bumps:       domain.VaultBumps{VaultBump: 254, TokenVaultBump: 253},
		TotalAmount: 1_000_000,
		TokenVault:  testKey(1),
		FeeVault:    testKey(2),
		TokenMint:   testKey(3),
		LPMint:      testKey(4),
		Base:        testKey(5),
		Admin:       testKey(6),
		Operator:    testKey(7),
		LockedProfit: domain.LockedProfitTracker{
			LastUpdatedLockedProfit: 500_000,
			LastReport:              1000,
			Degradation:             1,
		},
	}
	v.Strategies[0] = testKey(8)
	v.Strategies[29] = testKey(9)
	return v
}

func TestVaultLayoutV1Size(t *testing.T) {
	if VaultLayoutV1.Size != 1227 {
		t.Errorf("Size = %d, want 1227", VaultLayoutV1.Size)
	}
}

func TestVaultLayoutV1Discriminator(t *testing.T) {
	want := [8]byte{211, 8, 232, 43, 2, 152, 117, 119}
	if VaultLayoutV1.Discriminator != want {
		t.Errorf("Discriminator = %v, want %v", VaultLayoutV1.Discriminator, want)
	}
}

func TestDecodeVaultState(t *testing.T) {
	want := sampleState()
	data := VaultLayoutV1.Encode(want)
	if len(data) != VaultLayoutV1.Size {
		t.Fatalf("encoded %d bytes, want %d", len(data), VaultLayoutV1.Size)
	}

	got, err := DecodeVaultState(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("decoded state = %+v, want %+v", got, want)
	}
	if n := len(got.ActiveStrategies()); n != 2 {
		t.Errorf("ActiveStrategies() = %d, want 2", n)
	}
}

func TestDecodeVaultStateIgnoresTrailingBytes(t *testing.T) {
	data := append(VaultLayoutV1.Encode(sampleState()), make([]byte, 5)...)

	got, err := DecodeVaultState(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalAmount != 1_000_000 {
		t.Errorf("TotalAmount = %d, want 1000000", got.TotalAmount)
	}
}

func TestDecodeVaultStateErrors(t *testing.T) {
	valid := VaultLayoutV1.Encode(sampleState())

	badTag := append([]byte(nil), valid...)
	badTag[0] ^= 0xff

	badEnabled := append([]byte(nil), valid...)
	badEnabled[discriminatorSize] = 2

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"discriminator only", valid[:discriminatorSize]},
		{"one byte short", valid[:len(valid)-1]},
		{"wrong discriminator", badTag},
		{"enabled out of range", badEnabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeVaultState(tt.data)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("err = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecodeVaultStateDisabled(t *testing.T) {
	s := sampleState()
	s.Enabled = false

	got, err := DecodeVaultState(VaultLayoutV1.Encode(s))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Enabled {
		t.Error("Enabled = true, want false")
	}
}
