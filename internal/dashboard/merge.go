package dashboard

import (
	"sort"
	"time"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MergeAndFilter joins both lists, keeps the kinds tipo allows, sorts by date
// newest first and keeps at most limit entries (limit <= 0 keeps all).
// Equal dates keep fetch order, receitas before despesas. Records whose date
// cannot be parsed go last.
func MergeAndFilter(receitas, despesas []models.Movement, tipo models.TypeFilter, limit int) []models.Movement {
	type entry struct {
		m     models.Movement
		at    time.Time
		dated bool
	}

	entries := make([]entry, 0, len(receitas)+len(despesas))
	add := func(list []models.Movement, kind models.Kind) {
		for _, m := range list {
			if m.Tipo == "" {
				m.Tipo = kind
			}
			if !tipo.Matches(m.Tipo) {
				continue
			}
			at, ok := parseDate(m.Data)
			entries = append(entries, entry{m: m, at: at, dated: ok})
		}
	}
	add(receitas, models.Receita)
	add(despesas, models.Despesa)

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.dated != b.dated {
			return a.dated
		}
		return a.at.After(b.at)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]models.Movement, len(entries))
	for i, e := range entries {
		out[i] = e.m
	}
	return out
}
