package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAmount(t *testing.T) {
	sum, err := addAmount(40, 2)
	require.NoError(t, err)
	require.Equal(t, int64(42), sum)

	_, err = addAmount(math.MaxInt64, 1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestMulDiv(t *testing.T) {
	// 550 * 35 / 100 truncates to 192.
	got, err := mulDiv(550, 35, 100)
	require.NoError(t, err)
	require.Equal(t, int64(192), got)

	got, err = mulDiv(0, 35, 100)
	require.NoError(t, err)
	require.Zero(t, got)

	// The 128-bit intermediate keeps a*b from wrapping when b <= den.
	got, err = mulDiv(math.MaxInt64, 60, 100)
	require.NoError(t, err)
	require.Equal(t, int64(5534023222112865484), got)

	// A quotient beyond int64 must fail, not wrap.
	_, err = mulDiv(math.MaxInt64, 100, 3)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}
