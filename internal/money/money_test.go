package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"exact cents untouched", "123.45", "123.45"},
		{"rounds down below half", "1.004", "1"},
		{"half rounds up", "1.005", "1.01"},
		{"above half rounds up", "1.006", "1.01"},
		{"negative half rounds toward positive", "-1.005", "-1"},
		{"negative above half rounds down", "-1.006", "-1.01"},
		{"zero", "0", "0"},
		{"large amount", "999999.995", "1000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := decimal.NewFromString(tc.in)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tc.want)
			require.NoError(t, err)
			assert.True(t, Round(in).Equal(want), "Round(%s) = %s, want %s", tc.in, Round(in), want)
		})
	}
}

func TestRound_Idempotent(t *testing.T) {
	for _, s := range []string{"1.005", "-1.005", "42.424242", "0.001", "365000"} {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		once := Round(d)
		assert.True(t, Round(once).Equal(once), "Round not idempotent for %s", s)
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(600000), decimal.NewFromInt(800000))
	assert.True(t, got.Equal(decimal.NewFromInt(75)))
}

func TestMean(t *testing.T) {
	t.Run("empty is zero", func(t *testing.T) {
		assert.True(t, Mean(nil).IsZero())
	})
	t.Run("averages", func(t *testing.T) {
		vals := []decimal.Decimal{
			decimal.NewFromInt(10000),
			decimal.NewFromInt(20000),
			decimal.NewFromInt(30000),
		}
		assert.True(t, Mean(vals).Equal(decimal.NewFromInt(20000)))
	})
}
