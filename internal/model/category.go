package model

import "strings"

// CategoryType indicates whether a category holds income or expense
// transactions. The values are the wire values used by the expense API.
type CategoryType string

const (
	TypeIncome  CategoryType = "INCOME"
	TypeExpense CategoryType = "EXPENSE"
)

// Valid reports whether the type is one of the two known wire values.
func (t CategoryType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is a named bucket transactions are classified under. The ID is
// assigned by the server; the type never changes after creation.
type Category struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Type CategoryType `json:"type"`
}

// FilterCategories returns the categories of the requested type whose name
// contains search case-insensitively. An empty search matches all. The input
// slice is never mutated; callers can re-filter the same set repeatedly.
func FilterCategories(all []Category, ctype CategoryType, search string) []Category {
	search = strings.ToLower(strings.TrimSpace(search))
	filtered := make([]Category, 0, len(all))
	for _, cat := range all {
		if cat.Type != ctype {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(cat.Name), search) {
			continue
		}
		filtered = append(filtered, cat)
	}
	return filtered
}
