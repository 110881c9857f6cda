package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"financas/internal/categories"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/services"
)

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Format selects how command output is written.
type Format string

// ParseFormat accepts text, json and yaml. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be one of text, json, yaml", s)
	}
}

// TransactionView is the flattened transaction written by json and yaml
// output, with the category already resolved.
type TransactionView struct {
	ID          int64  `json:"id" yaml:"id"`
	TypeID      int    `json:"typeId" yaml:"typeId"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	CategoryID  int64  `json:"categoryId" yaml:"categoryId"`
	Category    string `json:"category" yaml:"category"`
	Value       string `json:"value" yaml:"value"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Status      bool   `json:"status" yaml:"status"`
}

func NewTransactionView(tx core.Transaction) TransactionView {
	cat := categories.Resolve(tx)
	v := TransactionView{
		ID:          tx.ID,
		TypeID:      int(tx.TypeID),
		Type:        tx.TypeID.String(),
		Description: tx.Description,
		CategoryID:  cat.ID,
		Category:    cat.Name,
		Value:       tx.Value.StringFixed(2),
		Status:      bool(tx.Status),
	}
	if !tx.Date.IsZero() {
		v.Date = core.FormDate(tx.Date.Time)
	}
	return v
}

func viewsOf(txs []core.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionView(tx))
	}
	return out
}

type dashboardView struct {
	User      *core.User        `json:"user,omitempty" yaml:"user,omitempty"`
	Totals    core.Dashboard    `json:"totals" yaml:"totals"`
	Count     int               `json:"count" yaml:"count"`
	Recent    []TransactionView `json:"recent" yaml:"recent"`
	FetchedAt time.Time         `json:"fetchedAt" yaml:"fetchedAt"`
	Stale     bool              `json:"stale" yaml:"stale"`
}

type listView struct {
	Filter       string            `json:"filter" yaml:"filter"`
	Search       string            `json:"search,omitempty" yaml:"search,omitempty"`
	Count        int               `json:"count" yaml:"count"`
	Totals       core.Dashboard    `json:"totals" yaml:"totals"`
	Transactions []TransactionView `json:"transactions" yaml:"transactions"`
	FetchedAt    time.Time         `json:"fetchedAt" yaml:"fetchedAt"`
	Stale        bool              `json:"stale" yaml:"stale"`
}

type categoryGroup struct {
	TypeID     int             `json:"typeId" yaml:"typeId"`
	Type       string          `json:"type" yaml:"type"`
	Categories []core.Category `json:"categories" yaml:"categories"`
}

// Renderer writes command results to w in the selected format. Text
// output is styled only when w is a color terminal.
type Renderer struct {
	w      io.Writer
	format Format

	title   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	byType  map[core.TypeID]lipgloss.Style
	balance func(negative bool) lipgloss.Style
}

func NewRenderer(w io.Writer, format Format) *Renderer {
	lg := lipgloss.NewRenderer(w)
	green := lg.NewStyle().Foreground(lipgloss.Color("10"))
	red := lg.NewStyle().Foreground(lipgloss.Color("9"))
	return &Renderer{
		w:      w,
		format: format,
		title:  lg.NewStyle().Bold(true),
		muted:  lg.NewStyle().Foreground(lipgloss.Color("8")),
		warn:   lg.NewStyle().Foreground(lipgloss.Color("11")),
		byType: map[core.TypeID]lipgloss.Style{
			core.Income:     green,
			core.Expense:    red,
			core.Investment: lg.NewStyle().Foreground(lipgloss.Color("12")),
		},
		balance: func(negative bool) lipgloss.Style {
			if negative {
				return red.Bold(true)
			}
			return green.Bold(true)
		},
	}
}

func (r *Renderer) Format() Format { return r.format }

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("encode: unsupported format %q", r.format)
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) staleNotice(stale bool, fetchedAt time.Time) {
	if !stale {
		return
	}
	at := "-"
	if !fetchedAt.IsZero() {
		at = fetchedAt.Local().Format("02/01/2006 15:04")
	}
	r.printf("%s\n", r.warn.Render("Offline: showing data saved at "+at))
}

func (r *Renderer) typeValue(tx core.Transaction) string {
	style, ok := r.byType[tx.TypeID]
	if !ok {
		return core.FormatBRL(tx.Value)
	}
	return style.Render(core.FormatBRL(tx.Value))
}

func (r *Renderer) table(txs []core.Transaction) string {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		cat := categories.Resolve(tx)
		rows = append(rows, []string{
			strconv.FormatInt(tx.ID, 10),
			core.FormatDateBR(tx.Date),
			tx.TypeID.Icon() + " " + tx.TypeID.String(),
			tx.Description,
			cat.Icon + " " + cat.Name,
			r.typeValue(tx),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Data", "Tipo", "Descrição", "Categoria", "Valor").
		Rows(rows...).
		String()
}

// Dashboard writes the home screen: greeting, totals and the most recent
// transactions.
func (r *Renderer) Dashboard(ov services.Overview) error {
	if r.format != FormatText {
		return r.encode(dashboardView{
			User:      ov.User,
			Totals:    ov.Totals,
			Count:     ov.Count,
			Recent:    viewsOf(ov.Recent),
			FetchedAt: ov.FetchedAt,
			Stale:     ov.Stale,
		})
	}

	name := "Usuário"
	if ov.User != nil && ov.User.Name != "" {
		name = ov.User.Name
	}
	r.printf("%s\n", r.title.Render("Olá, "+name))
	r.staleNotice(ov.Stale, ov.FetchedAt)
	r.printf("\n")

	balance := totalText(ov.Totals.Balance)
	r.printf("%-15s %s\n", "Saldo", r.balance(strings.HasPrefix(ov.Totals.Balance, "-")).Render(balance))
	r.printf("%-15s %s\n", "Receitas", r.byType[core.Income].Render(totalText(ov.Totals.Income)))
	r.printf("%-15s %s\n", "Despesas", r.byType[core.Expense].Render(totalText(ov.Totals.Expenses)))
	r.printf("%-15s %s\n", "Investimentos", r.byType[core.Investment].Render(totalText(ov.Totals.Investments)))
	r.printf("\n")

	if len(ov.Recent) == 0 {
		r.printf("%s\n", r.muted.Render("Nenhuma transação encontrada"))
		return nil
	}
	r.printf("%s\n", r.title.Render(fmt.Sprintf("Transações recentes (%d de %d)", len(ov.Recent), ov.Count)))
	r.printf("%s\n", r.table(ov.Recent))
	return nil
}

// Transactions writes a filtered list with the per-type totals of the
// rows shown. l must already be filtered.
func (r *Renderer) Transactions(l services.Listing, f core.Filter) error {
	totals := core.CalculateDashboard(l.Transactions)
	if r.format != FormatText {
		return r.encode(listView{
			Filter:       string(filterType(f)),
			Search:       strings.TrimSpace(f.Search),
			Count:        len(l.Transactions),
			Totals:       totals,
			Transactions: viewsOf(l.Transactions),
			FetchedAt:    l.FetchedAt,
			Stale:        l.Stale,
		})
	}

	r.staleNotice(l.Stale, l.FetchedAt)
	heading := filterType(f).Label()
	if q := strings.TrimSpace(f.Search); q != "" {
		heading += fmt.Sprintf(" · busca %q", q)
	}
	r.printf("%s\n", r.title.Render(fmt.Sprintf("%s (%d)", heading, len(l.Transactions))))
	if len(l.Transactions) == 0 {
		if f.Active() {
			r.printf("%s\n", r.muted.Render("Nenhuma transação corresponde aos filtros"))
		} else {
			r.printf("%s\n", r.muted.Render("Nenhuma transação encontrada"))
		}
		return nil
	}
	r.printf("%s · %s · %s\n",
		r.byType[core.Income].Render("Receitas "+totalText(totals.Income)),
		r.byType[core.Expense].Render("Despesas "+totalText(totals.Expenses)),
		r.byType[core.Investment].Render("Investimentos "+totalText(totals.Investments)))
	r.printf("%s\n", r.table(l.Transactions))
	return nil
}

// Transaction writes the details view of a single transaction.
func (r *Renderer) Transaction(tx core.Transaction) error {
	if r.format != FormatText {
		return r.encode(NewTransactionView(tx))
	}
	cat := categories.Resolve(tx)
	d := tx.TypeID.Details()
	r.printf("%s\n", r.title.Render(fmt.Sprintf("%s %s #%d", d.Icon, d.Label, tx.ID)))
	r.printf("%s %s\n\n", r.typeValue(tx), r.muted.Render(d.Verb))
	r.printf("%s\n", core.ShareText(tx, cat))
	return nil
}

// Categories writes the catalog, optionally restricted to one type.
func (r *Renderer) Categories(types []core.TypeID) error {
	groups := make([]categoryGroup, 0, len(types))
	for _, t := range types {
		groups = append(groups, categoryGroup{TypeID: int(t), Type: t.String(), Categories: categories.ByType(t)})
	}
	if r.format != FormatText {
		return r.encode(groups)
	}
	for i, g := range groups {
		if i > 0 {
			r.printf("\n")
		}
		r.printf("%s\n", r.title.Render(core.TypeID(g.TypeID).Icon()+" "+g.Type))
		for _, c := range g.Categories {
			r.printf("  %4d  %s %s\n", c.ID, c.Icon, c.Name)
		}
	}
	return nil
}

// Created confirms a successful create. tx is nil when the API did not
// echo the stored transaction.
func (r *Renderer) Created(typeID core.TypeID, tx *core.Transaction) error {
	if r.format != FormatText {
		if tx == nil {
			return r.encode(map[string]any{"created": true, "typeId": int(typeID)})
		}
		return r.encode(NewTransactionView(*tx))
	}
	msg := typeID.Details().Label + " adicionada com sucesso!"
	if typeID == core.Investment {
		msg = "Investimento adicionado com sucesso!"
	}
	if tx != nil && tx.ID != 0 {
		msg += fmt.Sprintf(" (#%d)", tx.ID)
	}
	r.printf("%s\n", r.byType[typeID].Render(msg))
	return nil
}

// Deleted confirms a successful delete.
func (r *Renderer) Deleted(id int64) error {
	if r.format != FormatText {
		return r.encode(map[string]any{"deleted": true, "id": id})
	}
	r.printf("Transação #%d excluída com sucesso\n", id)
	return nil
}

// Session writes who is logged in.
func (r *Renderer) Session(user *core.User, valid bool) error {
	if r.format != FormatText {
		return r.encode(map[string]any{"valid": valid, "user": user})
	}
	if !valid || user == nil {
		r.printf("%s\n", r.muted.Render("Not logged in"))
		return nil
	}
	r.printf("Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

// Exported reports the result of an export.
func (r *Renderer) Exported(res export.Result) error {
	if r.format != FormatText {
		return r.encode(res)
	}
	r.printf("Exported %d rows to %s\n", res.Rows, res.Range)
	return nil
}

// Message writes a plain line in text mode and {"message": ...} otherwise.
func (r *Renderer) Message(msg string) error {
	if r.format != FormatText {
		return r.encode(map[string]string{"message": msg})
	}
	r.printf("%s\n", msg)
	return nil
}

func filterType(f core.Filter) core.FilterType {
	if f.Type == "" {
		return core.FilterAll
	}
	return f.Type
}

// totalText formats a two-decimal dashboard string as BRL.
func totalText(s string) string {
	return "R$ " + strings.Replace(s, ".", ",", 1)
}
