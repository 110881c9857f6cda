package core

import "strings"

// ShareText builds the plain-text summary offered by the share action of
// the details view. cat is the already resolved category.
func ShareText(tx Transaction, cat Category) string {
	var b strings.Builder
	b.WriteString("📊 Detalhes da Transação:\n\n")
	b.WriteString("💰 Valor: " + FormatBRL(tx.Value) + "\n")
	b.WriteString("📝 Descrição: " + tx.Description + "\n")
	b.WriteString("🏷️ Categoria: " + cat.Name + " " + cat.Icon + "\n")
	b.WriteString("📅 Data: " + FormatDateLongBR(tx.Date) + "\n")
	b.WriteString("🎯 Tipo: " + tx.TypeID.Details().Label + "\n")
	b.WriteString("📊 Status: " + tx.Status.Label() + "\n\n")
	b.WriteString("👉 Registrado no Meu Finance App")
	return b.String()
}
