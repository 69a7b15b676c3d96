package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apooravmalik/tagbot/models"
)

var incidentSchema = models.TableSchema{
	TableName: "incident",
	Columns: []models.ColumnInfo{
		{Name: "id", Type: "integer", Nullable: false},
		{Name: "status", Type: "character varying", Nullable: true},
		{Name: "created_at", Type: "timestamp without time zone", Nullable: false},
	},
}

func TestSchemaBlock(t *testing.T) {
	got := SchemaBlock(incidentSchema)
	want := "Table: incident\n" +
		"Columns:\n" +
		"- id (integer, NOT NULL)\n" +
		"- status (character varying, NULL)\n" +
		"- created_at (timestamp without time zone, NOT NULL)\n"
	assert.Equal(t, want, got)
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Count incidents by status.", incidentSchema, nil)

	assert.Contains(t, got, "Request: Convert this into MSSQL: Count incidents by status.")
	assert.Contains(t, got, "Table Schema:\nTable: incident\n")
	assert.Contains(t, got, "- status (character varying, NULL)")
	assert.NotContains(t, got, "Relevant columns:")
	assert.True(t, len(got) > 0 && got[len(got)-4:] == "SQL:")
}

func TestBuildPromptWithFocus(t *testing.T) {
	got := BuildPrompt("Count incidents by status.", incidentSchema, []string{"id", "status"})

	assert.Contains(t, got, "Relevant columns: id, status\n")
	assert.True(t, len(got) > 0 && got[len(got)-4:] == "SQL:")
}
