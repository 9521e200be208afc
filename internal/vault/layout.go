package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/mtlprog/vaultshare/internal/domain"
)

// Layout describes a versioned vault account schema.
type Layout struct {
	Version       int
	Discriminator [8]byte
	Size          int
}

const (
	discriminatorSize = 8
	publicKeySize     = 32
)

// VaultLayoutV1 is the dynamic vault account layout:
//
//	discriminator         [8]
//	enabled               u8
//	bumps                 u8, u8
//	total_amount          u64
//	token_vault           [32]
//	fee_vault             [32]
//	token_mint            [32]
//	lp_mint               [32]
//	strategies            [30][32]
//	base                  [32]
//	admin                 [32]
//	operator              [32]
//	locked_profit_tracker u64 (last_updated_locked_profit), u64 (last_report), u64 (degradation)
var VaultLayoutV1 = Layout{
	Version:       1,
	Discriminator: accountDiscriminator("Vault"),
	Size: discriminatorSize +
		1 + 2 + 8 +
		4*publicKeySize +
		domain.MaxStrategies*publicKeySize +
		3*publicKeySize +
		3*8,
}

// accountDiscriminator is the Anchor account tag: first 8 bytes of sha256("account:<Name>").
func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:discriminatorSize])
	return d
}

// DecodeVaultState parses raw vault account bytes using VaultLayoutV1.
func DecodeVaultState(data []byte) (domain.VaultState, error) {
	return VaultLayoutV1.Decode(data)
}

// Decode parses data according to the layout. Bytes past Size are ignored.
func (l Layout) Decode(data []byte) (domain.VaultState, error) {
	if len(data) < l.Size {
		return domain.VaultState{}, decodeErrorf("layout v%d needs %d bytes, got %d", l.Version, l.Size, len(data))
	}
	if !bytes.Equal(data[:discriminatorSize], l.Discriminator[:]) {
		return domain.VaultState{}, decodeErrorf("discriminator %x does not match vault layout v%d", data[:discriminatorSize], l.Version)
	}

	r := &fieldReader{dec: bin.NewBorshDecoder(data[discriminatorSize:l.Size])}
	var v domain.VaultState

	enabled := r.u8("enabled")
	v.Bumps.VaultBump = r.u8("bumps.vault_bump")
	v.Bumps.TokenVaultBump = r.u8("bumps.token_vault_bump")
	v.TotalAmount = r.u64("total_amount")
	v.TokenVault = r.key("token_vault")
	v.FeeVault = r.key("fee_vault")
	v.TokenMint = r.key("token_mint")
	v.LPMint = r.key("lp_mint")
	for i := range v.Strategies {
		v.Strategies[i] = r.key(fmt.Sprintf("strategies[%d]", i))
	}
	v.Base = r.key("base")
	v.Admin = r.key("admin")
	v.Operator = r.key("operator")
	v.LockedProfit.LastUpdatedLockedProfit = r.u64("locked_profit_tracker.last_updated_locked_profit")
	v.LockedProfit.LastReport = r.u64("locked_profit_tracker.last_report")
	v.LockedProfit.Degradation = r.u64("locked_profit_tracker.locked_profit_degradation")

	if r.err != nil {
		return domain.VaultState{}, r.err
	}

	switch enabled {
	case 0:
		v.Enabled = false
	case 1:
		v.Enabled = true
	default:
		return domain.VaultState{}, decodeErrorf("enabled flag must be 0 or 1, got %d", enabled)
	}

	return v, nil
}

// fieldReader reads fields in order and keeps the first error.
type fieldReader struct {
	dec *bin.Decoder
	err error
}

func (r *fieldReader) fail(field string, err error) {
	if r.err == nil {
		r.err = decodeErrorf("reading %s: %v", field, err)
	}
}

func (r *fieldReader) u8(field string) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint8()
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) u64(field string) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) key(field string) solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	b, err := r.dec.ReadNBytes(publicKeySize)
	if err != nil {
		r.fail(field, err)
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

// Encode serializes a state with the layout, producing exactly Size bytes.
func (l Layout) Encode(v domain.VaultState) []byte {
	buf := make([]byte, 0, l.Size)
	buf = append(buf, l.Discriminator[:]...)
	if v.Enabled {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, v.Bumps.VaultBump, v.Bumps.TokenVaultBump)
	buf = binary.LittleEndian.AppendUint64(buf, v.TotalAmount)
	for _, k := range []solana.PublicKey{v.TokenVault, v.FeeVault, v.TokenMint, v.LPMint} {
		buf = append(buf, k[:]...)
	}
	for _, k := range v.Strategies {
		buf = append(buf, k[:]...)
	}
	for _, k := range []solana.PublicKey{v.Base, v.Admin, v.Operator} {
		buf = append(buf, k[:]...)
	}
	buf = binary.LittleEndian.AppendUint64(buf, v.LockedProfit.LastUpdatedLockedProfit)
	buf = binary.LittleEndian.AppendUint64(buf, v.LockedProfit.LastReport)
	buf = binary.LittleEndian.AppendUint64(buf, v.LockedProfit.Degradation)
	return buf
}
