package domain

// CatchAllCategory is the designated fallback when no vocabulary entry
// clearly matches a spoken transaction.
const CatchAllCategory = "Outros"

// DefaultCategories is the vocabulary used when storage is empty or
// unreadable. The catch-all category is always part of it.
func DefaultCategories() []string {
	return []string{"Alimentação", "Transporte", "Lazer", "Trabalho", "Saúde", CatchAllCategory}
}
