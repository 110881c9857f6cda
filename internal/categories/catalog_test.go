package categories

import (
	"testing"

	"financas/internal/core"
)

func TestByType(t *testing.T) {
	cases := []struct {
		typ   core.TypeID
		n     int
		first int64
	}{
		{core.Income, 7, 1},
		{core.Expense, 10, 101},
		{core.Investment, 8, 201},
	}
	for _, tc := range cases {
		got := ByType(tc.typ)
		if len(got) != tc.n || got[0].ID != tc.first {
			t.Fatalf("type %d: got %d categories starting at %d", tc.typ, len(got), got[0].ID)
		}
	}
	if got := ByType(core.TypeID(9)); len(got) != 0 {
		t.Fatalf("unknown type should be empty, got %v", got)
	}

	got := ByType(core.Income)
	got[0].Name = "changed"
	if ByType(core.Income)[0].Name != "Salário" {
		t.Fatalf("ByType must return a copy")
	}
}

func TestAllIDsUnique(t *testing.T) {
	seen := map[int64]bool{}
	for _, c := range All() {
		if seen[c.ID] {
			t.Fatalf("duplicate id %d", c.ID)
		}
		seen[c.ID] = true
	}
	if len(seen) != 25 {
		t.Fatalf("expected 25 categories, got %d", len(seen))
	}
}

func TestByIDAndDefault(t *testing.T) {
	if c := ByID(105); c.Name != "Saúde" {
		t.Fatalf("ByID(105) = %+v", c)
	}
	if c := ByID(999); c != Unknown || c.Name != "Não categorizado" {
		t.Fatalf("ByID(999) = %+v", c)
	}
	if c := Default(core.Investment); c.ID != 201 {
		t.Fatalf("Default(investment) = %+v", c)
	}
	if c := Default(core.TypeID(0)); c.Name != "Geral" {
		t.Fatalf("Default(0) = %+v", c)
	}
}

func TestResolve(t *testing.T) {
	id := int64(102)
	missing := int64(555)
	cases := []struct {
		name string
		tx   core.Transaction
		want string
	}{
		{"embedded wins", core.Transaction{Category: &core.Category{Name: "Mercado", Icon: "🛒"}, CategoryID: &id}, "Mercado"},
		{"catalog by id", core.Transaction{CategoryID: &id}, "Moradia"},
		{"unknown id", core.Transaction{CategoryID: &missing}, "Não categorizada"},
		{"nothing", core.Transaction{}, "Não categorizada"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.tx); got.Name != tc.want {
				t.Fatalf("got %q, want %q", got.Name, tc.want)
			}
		})
	}
}
