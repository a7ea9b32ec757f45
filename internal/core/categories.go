package core

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Category is a named bucket transactions are grouped under.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Registry holds the ordered Income and Expense category sets.
// It is read-only after construction.
type Registry struct {
	income  []Category
	expense []Category
}

var (
	defaultIncome = []Category{
		{Name: "Business", Color: "#123123"},
		{Name: "Investments", Color: "#154731"},
		{Name: "Extra income", Color: "#165f40"},
		{Name: "Deposits", Color: "#16784f"},
		{Name: "Lottery", Color: "#14915f"},
		{Name: "Gifts", Color: "#10ac6e"},
		{Name: "Salary", Color: "#0bc77e"},
		{Name: "Savings", Color: "#04e38d"},
		{Name: "Rental income", Color: "#00ff9d"},
	}
	defaultExpense = []Category{
		{Name: "Bills", Color: "#b50d12"},
		{Name: "Car", Color: "#bf2f1f"},
		{Name: "Clothes", Color: "#c9452c"},
		{Name: "Travel", Color: "#d3583a"},
		{Name: "Food", Color: "#dc6a48"},
		{Name: "Shopping", Color: "#e57c58"},
		{Name: "House", Color: "#ee8d68"},
		{Name: "Entertainment", Color: "#f79d79"},
		{Name: "Phone", Color: "#ffae8a"},
		{Name: "Pets", Color: "#cc474b"},
		{Name: "Other", Color: "#f55b5f"},
	}
)

// DefaultRegistry returns the built-in category sets.
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(defaultIncome, defaultExpense)
	return r
}

// NewRegistry validates and copies the given sets. Names must be non-empty and
// unique across both sets.
func NewRegistry(income, expense []Category) (*Registry, error) {
	seen := make(map[string]TransactionType, len(income)+len(expense))
	check := func(t TransactionType, cats []Category) error {
		for _, c := range cats {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				return fmt.Errorf("%s category with empty name", t)
			}
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("category %q declared twice (%s, %s)", name, prev, t)
			}
			seen[name] = t
		}
		return nil
	}
	if err := check(Income, income); err != nil {
		return nil, err
	}
	if err := check(Expense, expense); err != nil {
		return nil, err
	}
	return &Registry{
		income:  append([]Category(nil), income...),
		expense: append([]Category(nil), expense...),
	}, nil
}

type registryFile struct {
	Income  []Category `json:"income"`
	Expense []Category `json:"expense"`
}

// LoadRegistry reads category sets from a JSON file of the form
// {"income": [{"name": "...", "color": "#..."}], "expense": [...]}.
// An empty path yields the default registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var f registryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories file %s: %w", path, err)
	}
	if len(f.Income) == 0 || len(f.Expense) == 0 {
		return nil, fmt.Errorf("categories file %s: both income and expense sets are required", path)
	}
	return NewRegistry(f.Income, f.Expense)
}

// Categories returns a copy of the set for t, in display order.
func (r *Registry) Categories(t TransactionType) []Category {
	switch t {
	case Income:
		return append([]Category(nil), r.income...)
	case Expense:
		return append([]Category(nil), r.expense...)
	default:
		return nil
	}
}

// Lookup finds a category by exact name within the set for t.
func (r *Registry) Lookup(t TransactionType, name string) (Category, bool) {
	var set []Category
	switch t {
	case Income:
		set = r.income
	case Expense:
		set = r.expense
	}
	for _, c := range set {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Classify reports which set contains name. Income is checked first.
func (r *Registry) Classify(name string) (TransactionType, bool) {
	if _, ok := r.Lookup(Income, name); ok {
		return Income, true
	}
	if _, ok := r.Lookup(Expense, name); ok {
		return Expense, true
	}
	return "", false
}
