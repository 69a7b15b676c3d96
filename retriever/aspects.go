package retriever

import "strings"

// Aspects captures which facets of the data a question touches. It drives
// both column highlighting and prompt focus.
type Aspects struct {
	Count    bool
	Category bool
	Status   bool
	Location bool
	Time     bool
	List     bool
}

var aspectKeywords = map[string][]string{
	"count":    {"count", "number", "total", "sum", "how many", "most", "least"},
	"category": {"category", "type", "classification", "kind"},
	"status":   {"status", "state", "open", "closed", "pending", "active", "resolved"},
	"location": {"location", "where", "place", "building", "site", "address", "zone", "area"},
	"time":     {"time", "date", "when", "period", "during", "recent", "latest", "oldest"},
	"list":     {"list", "show", "display", "get", "provide", "find"},
}

func anyKeyword(query string, words []string) bool {
	for _, w := range words {
		if strings.Contains(query, w) {
			return true
		}
	}
	return false
}

// DetectAspects inspects the question for keywords hinting at what kind of
// answer is wanted.
func DetectAspects(query string) Aspects {
	q := strings.ToLower(query)
	return Aspects{
		Count:    anyKeyword(q, aspectKeywords["count"]),
		Category: anyKeyword(q, aspectKeywords["category"]),
		Status:   anyKeyword(q, aspectKeywords["status"]),
		Location: anyKeyword(q, aspectKeywords["location"]),
		Time:     anyKeyword(q, aspectKeywords["time"]),
		List:     anyKeyword(q, aspectKeywords["list"]),
	}
}
