// Package categories holds the fixed category catalog bundled with the
// client. The API only stores the numeric category id.
package categories

import "financas/internal/core"

var (
	income = []core.Category{
		{ID: 1, Name: "Salário", Icon: "💰", Color: "#22c55e", Emoji: "💼"},
		{ID: 2, Name: "Freelance", Icon: "💼", Color: "#10b981", Emoji: "👨‍💻"},
		{ID: 3, Name: "Venda", Icon: "🛒", Color: "#84cc16", Emoji: "📦"},
		{ID: 4, Name: "Investimento", Icon: "📈", Color: "#3b82f6", Emoji: "📊"},
		{ID: 5, Name: "Presente", Icon: "🎁", Color: "#f59e0b", Emoji: "🎁"},
		{ID: 6, Name: "Reembolso", Icon: "↪️", Color: "#8b5cf6", Emoji: "💸"},
		{ID: 7, Name: "Outros", Icon: "📄", Color: "#94a3b8", Emoji: "📝"},
	}

	expense = []core.Category{
		{ID: 101, Name: "Alimentação", Icon: "🍕", Color: "#ef4444", Emoji: "🍔"},
		{ID: 102, Name: "Moradia", Icon: "🏠", Color: "#dc2626", Emoji: "🏡"},
		{ID: 103, Name: "Transporte", Icon: "🚗", Color: "#b91c1c", Emoji: "⛽"},
		{ID: 104, Name: "Lazer", Icon: "🎬", Color: "#f97316", Emoji: "🎳"},
		{ID: 105, Name: "Saúde", Icon: "🏥", Color: "#d97706", Emoji: "💊"},
		{ID: 106, Name: "Educação", Icon: "📚", Color: "#92400e", Emoji: "🎓"},
		{ID: 107, Name: "Compras", Icon: "🛍️", Color: "#7c3aed", Emoji: "👕"},
		{ID: 108, Name: "Serviços", Icon: "🔧", Color: "#6d28d9", Emoji: "🛠️"},
		{ID: 109, Name: "Assinaturas", Icon: "📱", Color: "#5b21b6", Emoji: "📺"},
		{ID: 110, Name: "Outros", Icon: "📄", Color: "#94a3b8", Emoji: "📝"},
	}

	investment = []core.Category{
		{ID: 201, Name: "Tesouro Direto", Icon: "🏦", Color: "#3b82f6", Emoji: "🇧🇷"},
		{ID: 202, Name: "CDB", Icon: "📊", Color: "#2563eb", Emoji: "🏛️"},
		{ID: 203, Name: "Ações", Icon: "📈", Color: "#1d4ed8", Emoji: "💹"},
		{ID: 204, Name: "FIIs", Icon: "🏢", Color: "#1e40af", Emoji: "🏘️"},
		{ID: 205, Name: "ETF", Icon: "📉", Color: "#1e3a8a", Emoji: "📊"},
		{ID: 206, Name: "Criptomoedas", Icon: "₿", Color: "#f59e0b", Emoji: "🔗"},
		{ID: 207, Name: "Previdência", Icon: "👵", Color: "#d97706", Emoji: "👴"},
		{ID: 208, Name: "Outros", Icon: "📄", Color: "#94a3b8", Emoji: "📝"},
	}

	// Unknown is returned by ByID for ids outside the catalog.
	Unknown = core.Category{ID: 0, Name: "Não categorizado", Icon: "❓", Color: "#94a3b8", Emoji: "❓"}

	// General is the default for a type without categories.
	General = core.Category{ID: 0, Name: "Geral", Icon: "📄", Color: "#94a3b8", Emoji: "📝"}

	// Uncategorized is shown by the details view when nothing resolves.
	Uncategorized = core.Category{ID: 0, Name: "Não categorizada", Icon: "📄", Color: "#94a3b8", Emoji: "📄"}
)

// ByType returns a copy of the categories of typeID, in display order.
// Unknown types yield an empty slice.
func ByType(typeID core.TypeID) []core.Category {
	var src []core.Category
	switch typeID {
	case core.Income:
		src = income
	case core.Expense:
		src = expense
	case core.Investment:
		src = investment
	}
	out := make([]core.Category, len(src))
	copy(out, src)
	return out
}

// All returns every category, income first.
func All() []core.Category {
	out := make([]core.Category, 0, len(income)+len(expense)+len(investment))
	out = append(out, income...)
	out = append(out, expense...)
	return append(out, investment...)
}

// Lookup finds a category by id across every type.
func Lookup(id int64) (core.Category, bool) {
	for _, group := range [][]core.Category{income, expense, investment} {
		for _, c := range group {
			if c.ID == id {
				return c, true
			}
		}
	}
	return core.Category{}, false
}

// ByID returns the category with id, or Unknown.
func ByID(id int64) core.Category {
	if c, ok := Lookup(id); ok {
		return c
	}
	return Unknown
}

// Default returns the first category of typeID, or General.
func Default(typeID core.TypeID) core.Category {
	if cats := ByType(typeID); len(cats) > 0 {
		return cats[0]
	}
	return General
}

// Resolve picks the category to display for tx: the embedded category sent
// by the API, then the catalog entry for its category id, then Uncategorized.
func Resolve(tx core.Transaction) core.Category {
	if tx.Category != nil && tx.Category.Name != "" {
		c := *tx.Category
		if c.Icon == "" {
			c.Icon = Uncategorized.Icon
		}
		return c
	}
	if tx.CategoryID != nil {
		if c, ok := Lookup(*tx.CategoryID); ok {
			return c
		}
	}
	return Uncategorized
}
