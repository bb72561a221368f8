package core

// DefaultCategories is the starter set written once into an empty ledger.
// Ids are placeholders; SeedCategories replaces them.
var DefaultCategories = []Category{
	{
		ID: "1", Name: "Moradia", Color: "#ef4444", Type: Expense,
		SubCategories: []SubCategory{
			{ID: "1-1", Name: "Aluguel/Condomínio"},
			{ID: "1-2", Name: "Energia"},
			{ID: "1-3", Name: "Internet"},
		},
	},
	{
		ID: "2", Name: "Alimentação", Color: "#f97316", Type: Expense,
		SubCategories: []SubCategory{
			{ID: "2-1", Name: "Supermercado"},
			{ID: "2-2", Name: "Restaurante"},
		},
	},
	{
		ID: "3", Name: "Transporte", Color: "#eab308", Type: Expense,
		SubCategories: []SubCategory{
			{ID: "3-1", Name: "Combustível"},
			{ID: "3-2", Name: "Manutenção"},
			{ID: "3-3", Name: "Uber/Táxi"},
		},
	},
	{
		ID: "4", Name: "Salário", Color: "#22c55e", Type: Income,
		SubCategories: []SubCategory{
			{ID: "4-1", Name: "Mensal"},
			{ID: "4-2", Name: "13º Salário"},
		},
	},
	{
		ID: "5", Name: "Investimentos", Color: "#3b82f6", Type: Income,
		SubCategories: []SubCategory{
			{ID: "5-1", Name: "Dividendos"},
		},
	},
}

// SeedCategories returns a copy of the default set with every category and
// subcategory given a fresh id from newID.
func SeedCategories(newID func() string) []Category {
	out := make([]Category, len(DefaultCategories))
	for i, c := range DefaultCategories {
		c = c.Clone()
		c.ID = newID()
		for j := range c.SubCategories {
			c.SubCategories[j].ID = newID()
		}
		out[i] = c
	}
	return out
}
