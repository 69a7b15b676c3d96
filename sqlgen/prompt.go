package sqlgen

import (
	"fmt"
	"strings"

	"github.com/apooravmalik/tagbot/dataset"
	"github.com/apooravmalik/tagbot/models"
)

const systemPrompt = "You are a SQL code generator. Output ONLY valid SQL code with no explanations."

// SchemaBlock renders an introspected table the way the generation model
// saw schemas during fine-tuning.
func SchemaBlock(schema models.TableSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", schema.TableName)
	b.WriteString("Columns:\n")
	for _, col := range schema.Columns {
		nullable := "NOT NULL"
		if col.Nullable {
			nullable = "NULL"
		}
		fmt.Fprintf(&b, "- %s (%s, %s)\n", col.Name, col.Type, nullable)
	}
	return b.String()
}

// BuildPrompt assembles the generation request. The instruction line reuses
// the exact prefix the model was fine-tuned on. focus, when non-empty,
// names the columns the retriever highlighted for the question.
func BuildPrompt(question string, schema models.TableSchema, focus []string) string {
	focusLine := ""
	if len(focus) > 0 {
		focusLine = "Relevant columns: " + strings.Join(focus, ", ") + "\n"
	}

	return fmt.Sprintf("Request: %s %s\n\nTable Schema:\n%s%s\nSQL:",
		dataset.PromptPrefix, question, SchemaBlock(schema), focusLine)
}
