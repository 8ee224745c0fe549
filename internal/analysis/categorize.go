package analysis

import "strings"

// categoryRules maps keyword lists to product categories. Matching is
// case-insensitive substring search, first rule wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{
		category: "Alimentação",
		keywords: []string{
			"arroz", "feijão", "açúcar", "óleo", "leite", "pão",
			"banana", "tomate", "cebola", "frango", "carne",
			"refrigerante", "biscoito",
		},
	},
	{
		category: "Casa",
		keywords: []string{
			"detergente", "papel higiênico", "sabão", "shampoo", "pasta de dente",
		},
	},
	{
		category: "Saúde",
		keywords: []string{"remédio", "vitamina", "medicamento"},
	},
	{
		category: "Roupas",
		keywords: []string{"roupa", "sapato", "camisa"},
	},
}

// FallbackCategory is assigned when no rule matches.
const FallbackCategory = "Outros"

// CategorizeProduct maps a free-text product name onto the fixed
// category set. This is a rule table, not a model.
func CategorizeProduct(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return FallbackCategory
}
