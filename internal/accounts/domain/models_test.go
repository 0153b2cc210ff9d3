package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDebtValidate(t *testing.T) {
	tests := []struct {
		balance string
		wantErr bool
	}{
		{"150.00", false},
		{"0.01", false},
		{"0.005", false},
		{"0.004", true},
		{"-0.001", true},
		{"0", true},
		{"0.00", true},
		{"-1", true},
	}

	for _, tt := range tests {
		d := Debt{Balance: decimal.RequireFromString(tt.balance)}
		err := d.Validate()
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrNonPositiveBalance, tt.balance)
		} else {
			assert.NoError(t, err, tt.balance)
		}
	}
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageLimit, Offset: 5}, Page{Limit: 5000, Offset: 5}.Normalize())
	assert.Equal(t, Page{Limit: 10}, Page{Limit: 10, Offset: -3}.Normalize())
}
