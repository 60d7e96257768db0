package bot

import (
	"strings"

	"github.com/cloo-solutions/snowbot/internal/domain"
)

const (
	promptHeader   = "Answer the question based only on the following context:"
	questionPrefix = "Question: "
)

// composePrompt merges retrieved document text and the question into the
// generation prompt. Documents appear in retrieval order; the question is
// embedded verbatim. Pure function.
func composePrompt(docs []domain.Document, question string) string {
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, strings.TrimRight(d.Text, "\n"))
	}
	context := strings.Join(texts, "\n\n")

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(questionPrefix)
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
