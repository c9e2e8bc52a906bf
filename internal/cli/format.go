package cli

import (
	"strings"
	"time"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

// FormatBRL renders an amount the pt-BR way: R$ 1.234,56.
func FormatBRL(a models.Amount) string {
	d := a.Decimal.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	intPart, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate turns an ISO date (optionally with a time part) into dd/mm/yyyy.
// Anything else is shown as received.
func FormatDate(v string) string {
	if len(v) < 10 {
		return v
	}
	t, err := time.Parse(time.DateOnly, v[:10])
	if err != nil {
		return v
	}
	return t.Format("02/01/2006")
}

// SignedAmount prefixes receitas with + and despesas with -.
func SignedAmount(m models.Movement) string {
	if m.Tipo == models.Receita {
		return "+" + FormatBRL(m.Valor)
	}
	return "-" + FormatBRL(m.Valor)
}
