package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TransactionType distinguishes money coming in from money going out.
// The string value is the wire format used in the ledger file.
type TransactionType string

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// Category is a descriptive label from a closed set. Categories do not
// imply a transaction type: nothing stops an income tagged "Travel".
type Category string

const (
	Food           Category = "Food & Dining"
	Transportation Category = "Transportation"
	Housing        Category = "Housing"
	Utilities      Category = "Utilities"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Healthcare     Category = "Healthcare"
	Education      Category = "Education"
	Travel         Category = "Travel"
	Insurance      Category = "Insurance"
	Taxes          Category = "Taxes"
	OtherExpense   Category = "Other Expense"
	Salary         Category = "Salary"
	Freelance      Category = "Freelance"
	Investment     Category = "Investment"
	Business       Category = "Business"
	OtherIncome    Category = "Other Income"
)

var allCategories = []Category{
	Food, Transportation, Housing, Utilities, Entertainment, Shopping,
	Healthcare, Education, Travel, Insurance, Taxes, OtherExpense,
	Salary, Freelance, Investment, Business, OtherIncome,
}

var (
	ErrEmptyName       = errors.New("empty name")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownType     = errors.New("unknown transaction type")
)

// Categories returns the full enumeration in its canonical order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory maps a stored or user-supplied label back to the enumeration.
func ParseCategory(label string) (Category, error) {
	for _, c := range allCategories {
		if string(c) == label {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
}

// ParseTransactionType maps a stored or user-supplied label to a type.
func ParseTransactionType(label string) (TransactionType, error) {
	switch TransactionType(label) {
	case Expense, Income:
		return TransactionType(label), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, label)
}

// UnmarshalJSON rejects labels outside the enumeration, so a ledger file
// with an unrecognized category fails to load instead of smuggling free text.
func (c *Category) UnmarshalJSON(data []byte) error {
	label, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseCategory(label)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	label, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseTransactionType(label)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func unquote(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("expected JSON string: %w", err)
	}
	return s, nil
}

// Transaction is one recorded income or expense event. Instances are
// created by the ledger store and never mutated afterwards.
type Transaction struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Amount      Money           `json:"amount"`
	Category    Category        `json:"category"`
	Type        TransactionType `json:"transaction_type"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseCategory(string(t.Category)); err != nil {
		return err
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}
