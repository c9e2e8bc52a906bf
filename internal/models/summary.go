package models

// Summary holds the aggregate figures computed by the API. The client never
// derives them locally.
type Summary struct {
	TotalReceitas Amount `json:"total_receitas"`
	TotalDespesas Amount `json:"total_despesas"`
	Saldo         Amount `json:"saldo"`
}
