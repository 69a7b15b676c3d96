package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "adds trailing semicolon",
			in:   "SELECT * FROM response",
			want: "SELECT * FROM response;",
		},
		{
			name: "strips table brackets",
			in:   "SELECT * FROM [incident];",
			want: "SELECT * FROM incident;",
		},
		{
			name: "lowercases table after join",
			in:   "SELECT * FROM response r JOIN [Incident] i ON r.incident_id = i.id;",
			want: "SELECT * FROM response r JOIN incident i ON r.incident_id = i.id;",
		},
		{
			name: "renames camel case columns",
			in:   "SELECT CreatedAt, LastUpdateDate FROM workflow;",
			want: "SELECT created_at, updated_at FROM workflow;",
		},
		{
			name: "renames bare created without touching created_at",
			in:   "SELECT Created FROM workflow WHERE created_at IS NOT NULL;",
			want: "SELECT created_at FROM workflow WHERE created_at IS NOT NULL;",
		},
		{
			name: "renames last_login without doubling suffix",
			in:   "SELECT last_login FROM [user] WHERE last_login_at IS NOT NULL;",
			want: "SELECT last_login_at FROM user WHERE last_login_at IS NOT NULL;",
		},
		{
			name: "rewrites now to getdate",
			in:   "SELECT * FROM incident WHERE created_at < NOW();",
			want: "SELECT * FROM incident WHERE created_at < GETDATE();",
		},
		{
			name: "rewrites interval arithmetic",
			in:   "SELECT * FROM incident WHERE created_at >= CURRENT_DATE - INTERVAL '7' DAY;",
			want: "SELECT * FROM incident WHERE created_at >= DATEADD(day, -7, GETDATE());",
		},
		{
			name: "rewrites bare current_date",
			in:   "SELECT * FROM workflow WHERE updated_at = CURRENT_DATE;",
			want: "SELECT * FROM workflow WHERE updated_at = CAST(GETDATE() AS DATE);",
		},
		{
			name: "already standardized statement is unchanged",
			in:   "SELECT status, COUNT(*) as count FROM response GROUP BY status;",
			want: "SELECT status, COUNT(*) as count FROM response GROUP BY status;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Standardize(tt.in))
		})
	}
}

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain statement",
			in:   "SELECT 1;",
			want: "SELECT 1;",
		},
		{
			name: "sql fence",
			in:   "```sql\nSELECT 1;\n```",
			want: "SELECT 1;",
		},
		{
			name: "bare fence with chatter around it",
			in:   "Here you go:\n```\nSELECT 1;\n```\nLet me know!",
			want: "SELECT 1;",
		},
		{
			name: "surrounding whitespace",
			in:   "  SELECT 1;\n",
			want: "SELECT 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSQL(tt.in))
		})
	}
}
