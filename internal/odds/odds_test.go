package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddslane/sportsbook/internal/domain"
)

func TestDecimalToAmerican(t *testing.T) {
	cases := []struct {
		decimal  float64
		american int64
	}{
		{1.5, -200},
		{3.0, 200},
		{2.0, 100},
		{1.25, -400},
		{4.5, 350},
	}
	for _, tc := range cases {
		got, err := DecimalToAmerican(tc.decimal)
		require.NoError(t, err)
		assert.Equal(t, tc.american, got, "decimal %v", tc.decimal)
	}
}

func TestAmericanToDecimal_RoundTrip(t *testing.T) {
	for _, decimal := range []float64{1.5, 3.0, 2.0, 1.25, 4.5, 1.8, 11.0} {
		american, err := DecimalToAmerican(decimal)
		require.NoError(t, err)
		back, err := AmericanToDecimal(american)
		require.NoError(t, err)
		assert.InDelta(t, decimal, back, 0.005, "decimal %v via american %d", decimal, american)
	}
}

func TestDecimalToAmerican_Invalid(t *testing.T) {
	for _, decimal := range []float64{1.0, 0.9, 0, -2} {
		_, err := DecimalToAmerican(decimal)
		assert.Error(t, err, "decimal %v", decimal)
	}
}

func TestAmericanToDecimal_Invalid(t *testing.T) {
	for _, american := range []int64{0, 50, -50, 99, -99} {
		_, err := AmericanToDecimal(american)
		assert.Error(t, err, "american %d", american)
	}
}

func TestFromDecimal(t *testing.T) {
	o, err := FromDecimal(3.0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), o.American)
	assert.InDelta(t, 1.0/3.0, o.Implied, 1e-9)
	assert.True(t, Consistent(o))
}

func TestFromImplied(t *testing.T) {
	o, err := FromImplied(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, o.Decimal, 1e-9)
	assert.Equal(t, int64(100), o.American)

	_, err = FromImplied(0)
	assert.Error(t, err)
	_, err = FromImplied(1)
	assert.Error(t, err)
}

func TestConsistent(t *testing.T) {
	assert.True(t, Consistent(domain.Odds{Decimal: 1.5, American: -200, Implied: 0.6667}))
	assert.False(t, Consistent(domain.Odds{Decimal: 1.5, American: 200, Implied: 0.6667}))
	assert.False(t, Consistent(domain.Odds{Decimal: 1.5, American: -200, Implied: 0.4}))
	assert.False(t, Consistent(domain.Odds{}))
}
