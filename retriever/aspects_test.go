package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apooravmalik/tagbot/models"
)

func TestDetectAspects(t *testing.T) {
	tests := []struct {
		query string
		want  Aspects
	}{
		{
			query: "How many incidents are open?",
			want:  Aspects{Count: true, Status: true},
		},
		{
			query: "List incidents by building",
			want:  Aspects{List: true, Location: true},
		},
		{
			query: "Show the most recent workflows",
			want:  Aspects{Count: true, Time: true, List: true},
		},
		{
			query: "responses per category",
			want:  Aspects{Category: true},
		},
		{
			query: "everything",
			want:  Aspects{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAspects(tt.query))
		})
	}
}

var incidentSchema = models.TableSchema{
	TableName: "incident",
	Columns: []models.ColumnInfo{
		{Name: "id", Type: "integer"},
		{Name: "status", Type: "character varying"},
		{Name: "category", Type: "character varying"},
		{Name: "building", Type: "character varying"},
		{Name: "zone", Type: "character varying"},
		{Name: "created_at", Type: "timestamp without time zone"},
		{Name: "updated_at", Type: "timestamp without time zone"},
		{Name: "description", Type: "text"},
	},
}

func TestHighlightColumnsPrimaryKeyFirst(t *testing.T) {
	cols := HighlightColumns("Show open incidents", incidentSchema, "id")
	assert.Equal(t, []string{"id", "status"}, cols)
}

func TestHighlightColumnsLocation(t *testing.T) {
	cols := HighlightColumns("Where did incidents happen?", incidentSchema, "id")
	assert.Equal(t, []string{"id", "building", "zone"}, cols)
}

func TestHighlightColumnsCountByBuilding(t *testing.T) {
	cols := HighlightColumns("Count incidents by building", incidentSchema, "id")
	// "building" triggers the location aspect as well, so the column shows
	// up once despite matching twice.
	assert.Equal(t, []string{"id", "building", "zone"}, cols)
}

func TestHighlightColumnsTime(t *testing.T) {
	cols := HighlightColumns("incidents from a recent date", incidentSchema, "id")
	assert.Equal(t, []string{"id", "created_at", "updated_at"}, cols)
}

func TestHighlightColumnsCap(t *testing.T) {
	cols := HighlightColumns(
		"count the number of open incidents by category and building during the latest period",
		incidentSchema, "id")
	assert.LessOrEqual(t, len(cols), MaxHighlightedColumns)
	assert.Equal(t, "id", cols[0])
}

func TestHighlightColumnsNoPrimaryKey(t *testing.T) {
	cols := HighlightColumns("Show open incidents", incidentSchema, "")
	assert.Equal(t, []string{"status"}, cols)
}
