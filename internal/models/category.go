package models

// CategoryType says whether a category groups income or expenses.
type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// Category labels transactions and budgets. ParentID is empty for a root category.
type Category struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        CategoryType `json:"type"`
	ParentID    string       `json:"parent_id,omitempty"`
	Icon        string       `json:"icon,omitempty"`
	Color       string       `json:"color,omitempty"`
}

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}
