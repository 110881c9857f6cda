package core

import (
	"strings"
)

const (
	RendaFixa     InvestmentKind = "renda_fixa"
	RendaVariavel InvestmentKind = "renda_variavel"
	Cripto        InvestmentKind = "cripto"
	Fundo         InvestmentKind = "fundo"
)

const defaultIncomeCategory int64 = 1

// InvestmentKind is the investment selector of the investment form.
type InvestmentKind string

// InvestmentKinds lists the selectable kinds in display order.
func InvestmentKinds() []InvestmentKind {
	return []InvestmentKind{RendaFixa, RendaVariavel, Cripto, Fundo}
}

// Label returns the display name; unknown kinds are "Outro".
func (k InvestmentKind) Label() string {
	switch k {
	case RendaFixa:
		return "Renda Fixa"
	case RendaVariavel:
		return "Renda Variável"
	case Cripto:
		return "Criptomoedas"
	case Fundo:
		return "Fundos"
	default:
		return "Outro"
	}
}

// Draft holds the fields shared by every guided form. Value is the masked
// input ("12,34"); Date is YYYY-MM-DD and defaults to today.
type Draft struct {
	Value       string
	Description string
	Date        string
}

type (
	IncomeDraft struct {
		Draft
		CategoryID int64
	}

	ExpenseDraft struct {
		Draft
		CategoryID int64
	}

	InvestmentDraft struct {
		Draft
		Kind InvestmentKind
	}
)

// build validates the shared fields and returns the base payload.
func (d Draft) build(typeID TypeID) (NewTransaction, error) {
	value, err := ParseValue(NumericValue(d.Value))
	if d.Value == "" || err != nil || !value.IsPositive() {
		return NewTransaction{}, ErrInvalidValue
	}
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return NewTransaction{}, ErrEmptyDescription
	}
	date := Today()
	if strings.TrimSpace(d.Date) != "" {
		if date, err = ParseFormDate(d.Date); err != nil {
			return NewTransaction{}, err
		}
	}
	return NewTransaction{
		Value:       NumericValue(d.Value),
		TypeID:      typeID,
		Description: desc,
		Date:        date,
		Status:      true,
	}, nil
}

// Build returns the income payload. Without a selected category the first
// income category is used.
func (d IncomeDraft) Build() (NewTransaction, error) {
	tx, err := d.build(Income)
	if err != nil {
		return NewTransaction{}, err
	}
	id := d.CategoryID
	if id == 0 {
		id = defaultIncomeCategory
	}
	tx.CategoryID = &id
	return tx, nil
}

// Build returns the expense payload; the category is sent only when chosen.
func (d ExpenseDraft) Build() (NewTransaction, error) {
	tx, err := d.build(Expense)
	if err != nil {
		return NewTransaction{}, err
	}
	if d.CategoryID != 0 {
		id := d.CategoryID
		tx.CategoryID = &id
	}
	return tx, nil
}

// Build returns the investment payload. The kind label prefixes the
// description since the API has no dedicated field for it.
func (d InvestmentDraft) Build() (NewTransaction, error) {
	tx, err := d.build(Investment)
	if err != nil {
		return NewTransaction{}, err
	}
	tx.Description = d.Kind.Label() + " - " + tx.Description
	return tx, nil
}
