// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/bn"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		expect string
		err    bool
	}{
		{"1", "1000000000000000000", false},
		{"1.5", "1500000000000000000", false},
		{".25", "250000000000000000", false},
		{"0.000000000000000001", "1", false},
		{"0.0000000000000000001", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := bn.Parse(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, a.String())
		})
	}
}

func TestDecimal(t *testing.T) {
	assert.Equal(t, "1.5", bn.MustParse("1.5").Decimal())
	assert.Equal(t, "7000000", bn.Units(7_000_000).Decimal())
	assert.Equal(t, "0.000000000000000001", bn.FromUint64(1).Decimal())
	assert.Equal(t, "0", bn.Zero().Decimal())
}

func TestCheckedArithmetic(t *testing.T) {
	maxAmount, err := bn.FromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	require.NoError(t, err)

	_, err = maxAmount.Add(bn.FromUint64(1))
	assert.ErrorIs(t, err, bn.ErrOverflow)

	_, err = bn.Zero().Sub(bn.FromUint64(1))
	assert.ErrorIs(t, err, bn.ErrUnderflow)

	_, err = maxAmount.Mul(bn.FromUint64(2))
	assert.ErrorIs(t, err, bn.ErrOverflow)

	_, err = bn.Units(1).MulDiv(bn.Units(1), bn.Zero())
	assert.ErrorIs(t, err, bn.ErrDivByZero)

	_, err = bn.FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, bn.ErrUnderflow)

	assert.True(t, bn.IsArithmeticErr(bn.ErrOverflow))
	assert.False(t, bn.IsArithmeticErr(nil))
}

func TestMulDivWideIntermediate(t *testing.T) {
	// the product overflows 256 bits, the quotient does not
	maxAmount, err := bn.FromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	require.NoError(t, err)

	r, err := maxAmount.MulDiv(bn.Units(3), bn.Units(4))
	require.NoError(t, err)
	expect := new(big.Int).Div(new(big.Int).Mul(maxAmount.ToBig(), big.NewInt(3)), big.NewInt(4))
	assert.Equal(t, expect, r.ToBig())
}

func TestFixed(t *testing.T) {
	r, err := bn.MustParse("1.5").MulFixed(bn.MustParse("2"))
	require.NoError(t, err)
	assert.Equal(t, bn.Units(3), r)

	r, err = bn.Units(3).DivFixed(bn.Units(2))
	require.NoError(t, err)
	assert.Equal(t, bn.MustParse("1.5"), r)

	assert.Equal(t, bn.Zero(), bn.Units(1).SubFloor(bn.Units(2)))
	assert.Equal(t, bn.Units(1), bn.Min(bn.Units(1), bn.Units(2)))
	assert.Equal(t, bn.Units(2), bn.Max(bn.Units(1), bn.Units(2)))
	assert.Equal(t, int64(7), bn.MustParse("7.9").WholeUnits())
}

func TestCodec(t *testing.T) {
	a := bn.MustParse("123.456")

	data, err := rlp.EncodeToBytes(a)
	require.NoError(t, err)
	var decoded bn.Amount
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, a, decoded)

	data, err = json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"123456000000000000000"`, string(data))

	var fromJSON bn.Amount
	require.NoError(t, json.Unmarshal([]byte(`"1.5"`), &fromJSON))
	assert.Equal(t, bn.MustParse("1.5"), fromJSON)
}
