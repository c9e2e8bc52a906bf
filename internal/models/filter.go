package models

import (
	"fmt"
	"net/url"
	"strings"
)

// TypeFilter restricts the merged movement view by kind. It is applied on the
// client only.
type TypeFilter string

const (
	TypeTodos   TypeFilter = "todos"
	TypeReceita TypeFilter = TypeFilter(Receita)
	TypeDespesa TypeFilter = TypeFilter(Despesa)
)

func ParseTypeFilter(s string) (TypeFilter, error) {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeTodos:
		return TypeTodos, nil
	case TypeReceita:
		return TypeReceita, nil
	case TypeDespesa:
		return TypeDespesa, nil
	}
	return "", fmt.Errorf("unknown type filter %q", s)
}

// Matches reports whether a movement of kind k passes the filter.
func (t TypeFilter) Matches(k Kind) bool {
	if t == "" || t == TypeTodos {
		return true
	}
	return TypeFilter(k) == t
}

// Filter is the dashboard filter. Inicio, Fim and Busca are sent to the API;
// Tipo never is.
type Filter struct {
	Inicio string     `json:"inicio,omitempty"`
	Fim    string     `json:"fim,omitempty"`
	Busca  string     `json:"busca,omitempty"`
	Tipo   TypeFilter `json:"tipo,omitempty"`
}

// Query encodes the non-empty server-side fields.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Inicio != "" {
		q.Set("inicio", f.Inicio)
	}
	if f.Fim != "" {
		q.Set("fim", f.Fim)
	}
	if f.Busca != "" {
		q.Set("busca", f.Busca)
	}
	return q
}

// SameServerSide reports whether both filters would produce the same API query.
func (f Filter) SameServerSide(other Filter) bool {
	return f.Inicio == other.Inicio && f.Fim == other.Fim && f.Busca == other.Busca
}
