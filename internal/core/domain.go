package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income     TypeID = 1
	Expense    TypeID = 2
	Investment TypeID = 3
)

type (
	// TypeID is the numeric transaction type used by the API.
	TypeID int

	// Status is the active flag of a transaction. The API sends it as a
	// boolean; numeric and textual forms are tolerated on decode.
	Status bool

	User struct {
		ID    int64  `json:"id,omitempty"`
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}

	Category struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
		Emoji string `json:"emoji,omitempty"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		Value       decimal.Decimal `json:"value"`
		TypeID      TypeID          `json:"typeId"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Status      Status          `json:"status"`
		CategoryID  *int64          `json:"categoryId,omitempty"`
		Category    *Category       `json:"category,omitempty"`
	}

	// NewTransaction is the payload submitted by the guided forms.
	NewTransaction struct {
		Value       string `json:"value"`
		TypeID      TypeID `json:"typeId"`
		Description string `json:"description"`
		Date        string `json:"date"`
		Status      bool   `json:"status"`
		CategoryID  *int64 `json:"categoryId,omitempty"`
	}

	// TypeDetails describes how a transaction type is presented.
	TypeDetails struct {
		Label string
		Icon  string
		Verb  string
	}
)

var (
	ErrInvalidValue       = errors.New("invalid value")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// Valid reports whether t is one of the three known types.
func (t TypeID) Valid() bool {
	switch t {
	case Income, Expense, Investment:
		return true
	default:
		return false
	}
}

func (t TypeID) String() string {
	switch t {
	case Income:
		return "Receita"
	case Expense:
		return "Despesa"
	case Investment:
		return "Investimento"
	default:
		return "Desconhecido"
	}
}

// Icon returns the list icon for the type.
func (t TypeID) Icon() string {
	switch t {
	case Income:
		return "💰"
	case Expense:
		return "💸"
	case Investment:
		return "📈"
	default:
		return "❓"
	}
}

// Details returns the label, icon and verb shown on the details view.
// Unknown types are presented as a generic "Transação".
func (t TypeID) Details() TypeDetails {
	switch t {
	case Income:
		return TypeDetails{Label: "Receita", Icon: "💰", Verb: "recebido"}
	case Expense:
		return TypeDetails{Label: "Despesa", Icon: "💸", Verb: "gasto"}
	case Investment:
		return TypeDetails{Label: "Investimento", Icon: "📈", Verb: "investido"}
	default:
		return TypeDetails{Label: "Transação", Icon: "❓", Verb: "realizado"}
	}
}

// Label returns "Ativa" or "Inativa/Cancelada".
func (s Status) Label() string {
	if s {
		return "Ativa"
	}
	return "Inativa/Cancelada"
}

func (s *Status) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = false
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "active", "ativa", "ativo":
		*s = true
	case "false", "0", "", "inactive", "inativa", "inativo", "cancelled", "canceled":
		*s = false
	default:
		return fmt.Errorf("invalid status %s", string(b))
	}
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(s))
}

// ValueText is the textual form of the value used for free-text search.
func (t Transaction) ValueText() string {
	return t.Value.StringFixed(2)
}

// Validate checks the payload the same way the forms do before submitting.
func (n NewTransaction) Validate() error {
	if !n.TypeID.Valid() {
		return ErrInvalidType
	}
	v, err := ParseValue(n.Value)
	if err != nil || !v.IsPositive() {
		return ErrInvalidValue
	}
	if strings.TrimSpace(n.Description) == "" {
		return ErrEmptyDescription
	}
	if len(n.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if _, err := ParseFormDate(n.Date); err != nil {
		return err
	}
	return nil
}
