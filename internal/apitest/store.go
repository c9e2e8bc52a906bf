package apitest

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

// MovementFilter is the server-side part of a listing query.
type MovementFilter struct {
	Inicio string
	Fim    string
	Busca  string
}

// Store is the in-memory record keeper behind the fake API.
type Store struct {
	mu        sync.Mutex
	movements map[models.Kind][]models.Movement
}

func NewStore() *Store {
	return &Store{movements: map[models.Kind][]models.Movement{}}
}

// Add inserts a record and assigns it an id when it has none.
func (s *Store) Add(kind models.Kind, m models.Movement) models.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = models.ID(uuid.NewString())
	}
	m.Tipo = ""
	s.movements[kind] = append(s.movements[kind], m)
	return m
}

func (s *Store) Delete(kind models.Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.movements[kind]
	for i, m := range list {
		if string(m.ID) == id {
			s.movements[kind] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the records of a kind matching mf, newest date first.
func (s *Store) List(kind models.Kind, mf MovementFilter) []models.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	busca := strings.ToLower(mf.Busca)
	out := []models.Movement{}
	for _, m := range s.movements[kind] {
		date := dateOnly(m.Data)
		if mf.Inicio != "" && date < mf.Inicio {
			continue
		}
		if mf.Fim != "" && date > mf.Fim {
			continue
		}
		if busca != "" && !strings.Contains(strings.ToLower(m.Descricao), busca) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Data > out[j].Data
	})
	return out
}

// Summary totals the records matching mf.
func (s *Store) Summary(mf MovementFilter) models.Summary {
	total := func(kind models.Kind) decimal.Decimal {
		sum := decimal.Zero
		for _, m := range s.List(kind, mf) {
			sum = sum.Add(m.Valor.Decimal)
		}
		return sum
	}

	receitas := total(models.Receita)
	despesas := total(models.Despesa)
	return models.Summary{
		TotalReceitas: models.NewAmount(receitas),
		TotalDespesas: models.NewAmount(despesas),
		Saldo:         models.NewAmount(receitas.Sub(despesas)),
	}
}

// dateOnly trims a timestamp to its YYYY-MM-DD prefix for range checks.
func dateOnly(v string) string {
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}
