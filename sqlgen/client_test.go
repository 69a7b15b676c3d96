package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalizeKeepsRawAndStandardized(t *testing.T) {
	got := finalize("```sql\nSELECT CreatedAt FROM [incident]\n```")

	// The raw form survives fence extraction untouched so the audit log
	// can show what standardization changed.
	assert.Equal(t, "SELECT CreatedAt FROM [incident]", got.Raw)
	assert.Equal(t, "SELECT created_at FROM incident;", got.SQL)
}

func TestFinalizeAlreadyClean(t *testing.T) {
	got := finalize("SELECT status FROM response;")

	assert.Equal(t, "SELECT status FROM response;", got.Raw)
	assert.Equal(t, got.Raw, got.SQL)
}
