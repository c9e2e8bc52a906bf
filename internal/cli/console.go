package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/rogerio-castellano/finance-dashboard/internal/dashboard"
	"github.com/rogerio-castellano/finance-dashboard/internal/models"
	"github.com/rogerio-castellano/finance-dashboard/internal/validation"
)

var (
	brightGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	brightRed   = color.New(color.FgRed, color.Bold).SprintFunc()
	brightCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Console writes user-facing output. It also serves as the dashboard
// notifier, so toasts end up next to the rendered data.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Success(msg string) {
	pterm.Success.WithWriter(c.out).Println(msg)
}

func (c *Console) Failure(msg string, _ error) {
	pterm.Error.WithWriter(c.out).Println(msg)
}

func (c *Console) Info(msg string) {
	pterm.Info.WithWriter(c.out).Println(msg)
}

func (c *Console) FieldErrors(errs validation.Errors) {
	for _, fe := range errs {
		fmt.Fprintf(c.out, "  %s %s\n", brightRed(fe.Field+":"), fe.Reason)
	}
}

// Dashboard renders the summary cards, the active filter and the recent
// movements table.
func (c *Console) Dashboard(v dashboard.View, recent []models.Movement) {
	fmt.Fprintln(c.out, pterm.DefaultHeader.Sprint("Dashboard financeiro"))

	if v.State == dashboard.LoadFailed {
		pterm.Warning.WithWriter(c.out).Println("Exibindo os ultimos dados carregados.")
	}

	if v.Summary != nil {
		c.summary(*v.Summary)
	}

	if line := filterLine(v.Filter); line != "" {
		fmt.Fprintln(c.out, line)
	}

	c.recent(recent)
}

func (c *Console) summary(s models.Summary) {
	saldo := brightGreen(FormatBRL(s.Saldo))
	if s.Saldo.IsNegative() {
		saldo = brightRed(FormatBRL(s.Saldo))
	}

	panels, err := pterm.DefaultPanel.WithPadding(4).WithPanels(pterm.Panels{{
		{Data: "Receitas\n" + brightGreen(FormatBRL(s.TotalReceitas))},
		{Data: "Despesas\n" + brightRed(FormatBRL(s.TotalDespesas))},
		{Data: "Saldo\n" + saldo},
	}}).Srender()
	if err != nil {
		return
	}
	fmt.Fprintln(c.out, pterm.DefaultBox.WithTitle("Resumo").Sprint(panels))
}

func filterLine(f models.Filter) string {
	var parts []string
	if f.Inicio != "" {
		parts = append(parts, "inicio "+FormatDate(f.Inicio))
	}
	if f.Fim != "" {
		parts = append(parts, "fim "+FormatDate(f.Fim))
	}
	if f.Busca != "" {
		parts = append(parts, fmt.Sprintf("busca %q", f.Busca))
	}
	if f.Tipo != "" && f.Tipo != models.TypeTodos {
		parts = append(parts, "tipo "+string(f.Tipo))
	}
	if len(parts) == 0 {
		return ""
	}

	line := brightCyan("Filtros:")
	for _, p := range parts {
		line += " " + p
	}
	return line
}

func (c *Console) recent(list []models.Movement) {
	fmt.Fprintln(c.out, brightCyan("Movimentacoes recentes"))
	if len(list) == 0 {
		fmt.Fprintln(c.out, "Nenhum movimento cadastrado ainda.")
		return
	}

	data := pterm.TableData{{"ID", "Tipo", "Descricao", "Categoria", "Data", "Valor"}}
	for _, m := range list {
		valor := brightRed(SignedAmount(m))
		if m.Tipo == models.Receita {
			valor = brightGreen(SignedAmount(m))
		}
		data = append(data, []string{
			string(m.ID),
			m.Tipo.Label(),
			m.Descricao,
			m.Categoria,
			FormatDate(m.Data),
			valor,
		})
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithRightAlignment().
		WithData(data).
		Srender()
	if err != nil {
		return
	}
	fmt.Fprintln(c.out, table)
}
