package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePremium(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{raw: "3.45", want: 3.45, wantOK: true},
		{raw: "$3.45", want: 3.45, wantOK: true},
		{raw: " $1,234.50 ", want: 1234.5, wantOK: true},
		{raw: "0", want: 0, wantOK: true},
		{raw: ""},
		{raw: "$"},
		{raw: "N/A"},
		{raw: "NaN"},
		{raw: "Inf"},
		{raw: "-1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePremium(tt.raw)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePremium(t *testing.T) {
	quotes := map[string]string{
		"quoted":  "$2.10",
		"garbage": "--",
	}

	t.Run("quoted contract", func(t *testing.T) {
		v, ok := ResolvePremium("quoted", quotes)
		assert.True(t, ok)
		assert.Equal(t, 2.1, v)
		assert.Equal(t, 2.1, *Mark("quoted", quotes))
	})

	t.Run("unparseable quote is unresolved", func(t *testing.T) {
		_, ok := ResolvePremium("garbage", quotes)
		assert.False(t, ok)
		assert.Nil(t, Mark("garbage", quotes))
	})

	t.Run("missing contract is unresolved", func(t *testing.T) {
		_, ok := ResolvePremium("unknown", quotes)
		assert.False(t, ok)
		assert.Nil(t, Mark("unknown", nil))
	})
}
