package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

func amount(s string) models.Amount {
	return models.NewAmount(decimal.RequireFromString(s))
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"5", "R$ 5,00"},
		{"999.9", "R$ 999,90"},
		{"1000", "R$ 1.000,00"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-250.5", "-R$ 250,50"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(amount(tt.in)))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/01/2024", FormatDate("2024-01-05"))
	assert.Equal(t, "05/01/2024", FormatDate("2024-01-05T10:00:00Z"))
	assert.Equal(t, "ontem", FormatDate("ontem"))
	assert.Equal(t, "2024-13-45", FormatDate("2024-13-45"))
}

func TestSignedAmount(t *testing.T) {
	assert.Equal(t, "+R$ 1.000,00", SignedAmount(models.Movement{Tipo: models.Receita, Valor: amount("1000")}))
	assert.Equal(t, "-R$ 80,00", SignedAmount(models.Movement{Tipo: models.Despesa, Valor: amount("80")}))
}
