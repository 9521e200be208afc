package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode indicates malformed or schema-mismatched vault account bytes.
	// The account should be treated as invalid; decoding it again will not help.
	ErrDecode = errors.New("decoding vault state")

	// ErrClockSkew indicates that the valuation time precedes the vault's last report.
	ErrClockSkew = errors.New("valuation time precedes last report")

	// ErrArithmeticOverflow indicates a checked arithmetic step left its representable range.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

// ClockSkewError carries the timestamps of a rejected valuation.
type ClockSkewError struct {
	Now        uint64
	LastReport uint64
}

func (e *ClockSkewError) Error() string {
	return fmt.Sprintf("%s: now %d < last report %d", ErrClockSkew, e.Now, e.LastReport)
}

// Is makes errors.Is(err, ErrClockSkew) match.
func (e *ClockSkewError) Is(target error) bool {
	return target == ErrClockSkew
}

func decodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

func overflowErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArithmeticOverflow, fmt.Sprintf(format, args...))
}
