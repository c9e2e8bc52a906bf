package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the type of a movement: income (receita) or expense (despesa).
type Kind string

const (
	Receita Kind = "receita"
	Despesa Kind = "despesa"
)

// ParseKind accepts the API names and their plural forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receita", "receitas":
		return Receita, nil
	case "despesa", "despesas":
		return Despesa, nil
	}
	return "", fmt.Errorf("unknown movement kind %q", s)
}

func (k Kind) Valid() bool {
	return k == Receita || k == Despesa
}

// Endpoint is the collection path a movement of this kind lives under.
func (k Kind) Endpoint() string {
	if k == Receita {
		return "/receitas"
	}
	return "/despesas"
}

func (k Kind) Label() string {
	if k == Receita {
		return "Receita"
	}
	return "Despesa"
}

// ID is a server-assigned identifier. Some APIs send it as a number, so both
// JSON strings and numbers are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Movement is an income or expense record as returned by the API. Tipo is
// not part of the API payload; it is filled in from the endpoint it came from.
type Movement struct {
	ID        ID     `json:"id"`
	Descricao string `json:"descricao"`
	Valor     Amount `json:"valor"`
	Categoria string `json:"categoria"`
	Data      string `json:"data"`
	Tipo      Kind   `json:"tipo,omitempty"`
}

// NewMovement is the create payload. Tipo selects the endpoint and is never
// serialised.
type NewMovement struct {
	Descricao string `json:"descricao"`
	Valor     Amount `json:"valor"`
	Categoria string `json:"categoria"`
	Data      string `json:"data"`
	Tipo      Kind   `json:"-"`
}
