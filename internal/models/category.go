package models

import "fmt"

// Category classifies an Expense for reporting and budgets.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryRent          Category = "rent"
	CategoryUtilities     Category = "utilities"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryRent,
	CategoryUtilities,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryOther,
}

// ParseCategory validates a category name. An empty name maps to CategoryOther.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
