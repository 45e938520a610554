// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/rewards/thor"
)

var (
	ErrOverflow  = errors.New("bn: arithmetic overflow")
	ErrUnderflow = errors.New("bn: arithmetic underflow")
	ErrDivByZero = errors.New("bn: division by zero")
)

// IsArithmeticErr returns whether err is caused by a checked arithmetic failure.
func IsArithmeticErr(err error) bool {
	return errors.Is(err, ErrOverflow) || errors.Is(err, ErrUnderflow) || errors.Is(err, ErrDivByZero)
}

var scale = uint256.NewInt(thor.Scale)

// Amount is an unsigned 256-bit token amount with an implied 18-decimal scale.
// It is a value type; operations never mutate their receivers.
type Amount struct {
	v uint256.Int
}

// Zero returns the zero amount.
func Zero() Amount { return Amount{} }

// One returns 1.0, the fixed-point unit.
func One() Amount { return Amount{v: *scale} }

// FromUint64 creates an amount of n raw (smallest) units.
func FromUint64(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Units creates an amount of n whole tokens, i.e. n * 1e18 raw units.
func Units(n uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(n), scale)
	return a
}

// FromBig converts a big.Int. It fails on negative or over-256-bit values.
func FromBig(bi *big.Int) (Amount, error) {
	if bi.Sign() < 0 {
		return Amount{}, ErrUnderflow
	}
	u, overflow := uint256.FromBig(bi)
	if overflow {
		return Amount{}, ErrOverflow
	}
	return Amount{v: *u}, nil
}

// ParseRaw parses a base-10 integer of raw units.
func ParseRaw(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Parse parses a decimal token amount such as "1.5" into raw units.
// At most 18 fractional digits are accepted.
func Parse(s string) (Amount, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if len(frac) > thor.Decimals {
		return Amount{}, fmt.Errorf("bn: too many fractional digits in %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	w, err := ParseRaw(whole)
	if err != nil {
		return Amount{}, err
	}
	w, err = w.Mul(One())
	if err != nil {
		return Amount{}, err
	}
	if frac == "" {
		return w, nil
	}
	f, err := ParseRaw(frac + strings.Repeat("0", thor.Decimals-len(frac)))
	if err != nil {
		return Amount{}, err
	}
	return w.Add(f)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b.
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Sub returns a-b.
func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrUnderflow
	}
	return r, nil
}

// SubFloor returns a-b, or zero if b > a.
func (a Amount) SubFloor(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return Amount{}
	}
	var r Amount
	r.v.Sub(&a.v, &b.v)
	return r
}

// Mul returns a*b in raw units, without rescaling.
func (a Amount) Mul(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.MulOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// MulUint64 returns a*n.
func (a Amount) MulUint64(n uint64) (Amount, error) {
	return a.Mul(FromUint64(n))
}

// MulDiv returns floor(a*b/d) using a 512-bit intermediate product.
func (a Amount) MulDiv(b, d Amount) (Amount, error) {
	if d.IsZero() {
		return Amount{}, ErrDivByZero
	}
	var r Amount
	if _, overflow := r.v.MulDivOverflow(&a.v, &b.v, &d.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// MulFixed returns a*b/1e18, the product of two fixed-point values.
func (a Amount) MulFixed(b Amount) (Amount, error) {
	return a.MulDiv(b, One())
}

// DivFixed returns a*1e18/b, the quotient of two fixed-point values.
func (a Amount) DivFixed(b Amount) (Amount, error) {
	return a.MulDiv(One(), b)
}

// DivUint64 returns floor(a/n).
func (a Amount) DivUint64(n uint64) (Amount, error) {
	if n == 0 {
		return Amount{}, ErrDivByZero
	}
	var r Amount
	r.v.Div(&a.v, uint256.NewInt(n))
	return r, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero returns whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// ToBig converts to big.Int.
func (a Amount) ToBig() *big.Int {
	return a.v.ToBig()
}

// WholeUnits returns the integer part of the amount in tokens, saturating at MaxInt64.
// Intended for metrics and logs only.
func (a Amount) WholeUnits() int64 {
	var w uint256.Int
	w.Div(&a.v, scale)
	if !w.IsUint64() || w.Uint64() > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(w.Uint64())
}

// String returns the raw units in base 10.
func (a Amount) String() string {
	return a.v.Dec()
}

// Decimal renders the amount in tokens, e.g. "1.5".
func (a Amount) Decimal() string {
	var whole, frac uint256.Int
	whole.DivMod(&a.v, scale, &frac)
	if frac.IsZero() {
		return whole.Dec()
	}
	f := frac.Dec()
	f = strings.Repeat("0", thor.Decimals-len(f)) + f
	return whole.Dec() + "." + strings.TrimRight(f, "0")
}

// EncodeRLP implements rlp.Encoder.
func (a Amount) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &a.v)
}

// DecodeRLP implements rlp.Decoder.
func (a *Amount) DecodeRLP(s *rlp.Stream) error {
	return s.ReadUint256(&a.v)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Plain integers are raw units; values with a decimal point are tokens.
func (a *Amount) UnmarshalText(text []byte) error {
	s := string(text)
	var (
		parsed Amount
		err    error
	)
	if strings.Contains(s, ".") {
		parsed, err = Parse(s)
	} else {
		parsed, err = ParseRaw(s)
	}
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
