package retriever

import (
	"strings"

	"github.com/apooravmalik/tagbot/models"
)

// MaxHighlightedColumns caps how many columns get surfaced per table so the
// generation prompt stays focused.
const MaxHighlightedColumns = 8

var locationTerms = []string{"building", "zone", "street", "location", "address", "area", "site", "map"}
var timeTerms = []string{"time", "date", "_at"}

func columnsMatching(schema models.TableSchema, terms []string, limit int) []string {
	var out []string
	for _, col := range schema.Columns {
		name := strings.ToLower(col.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				out = append(out, col.Name)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

// HighlightColumns selects the columns of a table most relevant to the
// question: the primary key always comes first, then aspect-driven picks,
// de-duplicated in selection order and capped at MaxHighlightedColumns.
func HighlightColumns(query string, schema models.TableSchema, primaryKey string) []string {
	aspects := DetectAspects(query)
	q := strings.ToLower(query)

	var selected []string
	if primaryKey != "" {
		selected = append(selected, primaryKey)
	}

	if aspects.Status {
		selected = append(selected, columnsMatching(schema, []string{"status", "state"}, 1)...)
	}
	if aspects.Location {
		selected = append(selected, columnsMatching(schema, locationTerms, 3)...)
	}
	if aspects.Category {
		selected = append(selected, columnsMatching(schema, []string{"category"}, 1)...)
		if strings.Contains(q, "subcategory") {
			selected = append(selected, columnsMatching(schema, []string{"subcategory", "sub_category"}, 1)...)
		}
	}
	if aspects.Time {
		selected = append(selected, columnsMatching(schema, timeTerms, 2)...)
	}
	if aspects.Count {
		for _, group := range []string{"building", "status", "category"} {
			if strings.Contains(q, group) {
				selected = append(selected, columnsMatching(schema, []string{group}, 1)...)
			}
		}
	}

	// Order-preserving de-dup.
	seen := map[string]bool{}
	var out []string
	for _, name := range selected {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == MaxHighlightedColumns {
			break
		}
	}
	return out
}
