package interpret

import (
	"strings"
	"time"
)

// buildPrompt constructs the extraction instructions sent to the model.
// The product locale is Portuguese, so the rules are phrased in Portuguese;
// the JSON field names stay in English to match the response schema. The
// current date is mentioned only so the model can resolve relative words
// like "ontem" for context — the schema has no date field on purpose.
func buildPrompt(transcript string, categories []string, now time.Time) string {
	var b strings.Builder

	b.WriteString("Analise a seguinte transcrição de áudio em português sobre uma transação financeira.\n")
	b.WriteString("Extraia os dados para um formato JSON estruturado.\n\n")
	b.WriteString("Transcrição: \"" + transcript + "\"\n\n")

	b.WriteString("Regras:\n")
	b.WriteString("1. \"kind\": 'receita' (se ganhou/recebeu dinheiro) ou 'despesa' (se gastou/pagou algo).\n")
	b.WriteString("2. \"amount\": extraia apenas o número (ex: \"15 euros\" vira 15.0).\n")
	b.WriteString("3. \"category\": escolha a melhor categoria desta lista: [" + strings.Join(categories, ", ") + "]. ")
	b.WriteString("Se não houver correspondência clara, use 'Outros'.\n")
	b.WriteString("4. \"description\": resuma o que foi feito de forma curta e profissional.\n\n")

	b.WriteString("Hoje é dia " + now.Format("02/01/2006") + ". ")
	b.WriteString("Se o utilizador mencionar \"ontem\" ou \"hoje\", leve isso em conta apenas para o contexto, ")
	b.WriteString("mas o foco é extrair kind, amount, category e description.\n")

	return b.String()
}
