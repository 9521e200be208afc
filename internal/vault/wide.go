package vault

import (
	sdkmath "cosmossdk.io/math"
)

// wideBits bounds intermediate values to the unsigned 128-bit domain the protocol computes in.
const wideBits = 128

func wide(v uint64) sdkmath.Int {
	return sdkmath.NewIntFromUint64(v)
}

func checkWide(v sdkmath.Int, op string) (sdkmath.Int, error) {
	if v.IsNegative() {
		return sdkmath.Int{}, overflowErrorf("%s underflows: %s", op, v)
	}
	if v.BigInt().BitLen() > wideBits {
		return sdkmath.Int{}, overflowErrorf("%s exceeds %d bits", op, wideBits)
	}
	return v, nil
}

func mulWide(a, b sdkmath.Int, op string) (sdkmath.Int, error) {
	v, err := a.SafeMul(b)
	if err != nil {
		return sdkmath.Int{}, overflowErrorf("%s: %v", op, err)
	}
	return checkWide(v, op)
}

func subWide(a, b sdkmath.Int, op string) (sdkmath.Int, error) {
	v, err := a.SafeSub(b)
	if err != nil {
		return sdkmath.Int{}, overflowErrorf("%s: %v", op, err)
	}
	return checkWide(v, op)
}

// quoWide is floor division for non-negative operands.
func quoWide(a, b sdkmath.Int, op string) (sdkmath.Int, error) {
	if b.IsZero() {
		return sdkmath.Int{}, overflowErrorf("%s: division by zero", op)
	}
	v, err := a.SafeQuo(b)
	if err != nil {
		return sdkmath.Int{}, overflowErrorf("%s: %v", op, err)
	}
	return checkWide(v, op)
}

// narrow converts a wide value back to uint64.
func narrow(v sdkmath.Int, op string) (uint64, error) {
	if v.IsNegative() || !v.IsUint64() {
		return 0, overflowErrorf("%s does not fit in uint64: %s", op, v)
	}
	return v.Uint64(), nil
}
