package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

func ids(list []models.Movement) []models.ID {
	out := make([]models.ID, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

func TestMergeAndFilter(t *testing.T) {
	receitas := []models.Movement{
		{ID: "r1", Data: "2024-01-05"},
		{ID: "r2", Data: "not a date"},
		{ID: "r3", Data: "2024-01-07T10:00:00Z"},
	}
	despesas := []models.Movement{
		{ID: "d1", Data: "2024-01-05"},
		{ID: "d2", Data: "2024-01-06"},
	}

	tests := []struct {
		name  string
		tipo  models.TypeFilter
		limit int
		want  []models.ID
	}{
		{"all kinds, ties keep receita first, undated last", models.TypeTodos, 0, []models.ID{"r3", "d2", "r1", "d1", "r2"}},
		{"empty tipo behaves as todos", "", 3, []models.ID{"r3", "d2", "r1"}},
		{"only despesas", models.TypeDespesa, 6, []models.ID{"d2", "d1"}},
		{"only receitas", models.TypeReceita, 6, []models.ID{"r3", "r1", "r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(MergeAndFilter(receitas, despesas, tt.tipo, tt.limit)))
		})
	}
}

func TestMergeAndFilter_FillsKind(t *testing.T) {
	out := MergeAndFilter(
		[]models.Movement{{ID: "r", Data: "2024-01-01"}},
		[]models.Movement{{ID: "d", Data: "2024-01-02"}},
		models.TypeTodos, 6,
	)
	assert.Equal(t, models.Despesa, out[0].Tipo)
	assert.Equal(t, models.Receita, out[1].Tipo)
}

func TestMergeAndFilter_Empty(t *testing.T) {
	assert.Empty(t, MergeAndFilter(nil, nil, models.TypeTodos, 6))
}
