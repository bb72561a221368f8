package advisor

import (
	"fmt"
	"strings"

	"finfamily/internal/core"
)

// BuildPrompt renders the month data the model is asked to analyse.
// Category lines follow summary.ByCategory, which is already sorted by value.
func BuildPrompt(summary core.FinancialSummary, categories []core.Category, monthLabel, symbol string) string {
	var b strings.Builder
	b.WriteString("Atue como um consultor financeiro pessoal especializado no mercado brasileiro.\n")
	fmt.Fprintf(&b, "Analise os dados financeiros de %s.\n\n", monthLabel)

	b.WriteString("DADOS DO MÊS:\n")
	fmt.Fprintf(&b, "- Receitas previstas: %s\n", core.FormatAmount(summary.TotalIncome, symbol))
	fmt.Fprintf(&b, "- Receitas realizadas: %s\n", core.FormatAmount(summary.RealizedIncome, symbol))
	fmt.Fprintf(&b, "- Despesas previstas: %s\n", core.FormatAmount(summary.TotalExpense, symbol))
	fmt.Fprintf(&b, "- Despesas pagas: %s\n", core.FormatAmount(summary.RealizedExpense, symbol))
	fmt.Fprintf(&b, "- Saldo projetado (fim do mês): %s\n", core.FormatAmount(summary.Balance, symbol))
	fmt.Fprintf(&b, "- Saldo atual (realizado): %s\n\n", core.FormatAmount(summary.RealizedBalance, symbol))

	b.WriteString("DESPESAS POR CATEGORIA (PREVISTO):\n")
	if len(summary.ByCategory) == 0 {
		b.WriteString("- Nenhuma despesa registrada\n")
	}
	for _, ct := range summary.ByCategory {
		fmt.Fprintf(&b, "- %s: %s%s\n", ct.Name, core.FormatAmount(ct.Value, symbol), subCategoryNote(ct.CategoryID, categories))
	}

	b.WriteString(`
TAREFAS:
1. Diagnóstico do orçamento: a projeção fecha positiva ou negativa?
2. Execução: o realizado acompanha o previsto?
3. Principais ofensores: quais categorias mais pesam no orçamento?
4. Plano de ação: onde cortar se a projeção for negativa; onde investir (Selic, CDI, FIIs) se for positiva.

Seja direto, profissional e motivador. Use Markdown (negrito, listas).
`)
	return b.String()
}

func subCategoryNote(categoryID string, categories []core.Category) string {
	c, ok := core.FindCategory(categories, categoryID)
	if !ok || len(c.SubCategories) == 0 {
		return ""
	}
	names := make([]string, len(c.SubCategories))
	for i, sc := range c.SubCategories {
		names[i] = sc.Name
	}
	return " (subcategorias: " + strings.Join(names, ", ") + ")"
}
