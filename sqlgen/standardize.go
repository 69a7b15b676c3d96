package sqlgen

import (
	"regexp"
	"strings"
)

// The fine-tuned model drifts between MSSQL and Postgres-flavored output
// and is inconsistent about table brackets and column naming. These rules
// normalize its output to the canonical schema before execution.

var knownTables = regexp.MustCompile(`(?i)\b(FROM|JOIN)\s+\[?(response|workflow|incident|user)\]?`)

type rule struct {
	re   *regexp.Regexp
	repl string
}

var columnRules = []rule{
	{regexp.MustCompile(`(?i)\bLastUpdateDate\b`), "updated_at"},
	{regexp.MustCompile(`(?i)\bUpdatedAt\b`), "updated_at"},
	{regexp.MustCompile(`(?i)\bCreatedAt\b`), "created_at"},
	{regexp.MustCompile(`(?i)\bCreated\b`), "created_at"},
	{regexp.MustCompile(`(?i)\bdate_created_at\b`), "created_at"},
	{regexp.MustCompile(`(?i)\blast_login\b`), "last_login_at"},
	{regexp.MustCompile(`(?i)\blast_updated\b`), "updated_at"},
	{regexp.MustCompile(`(?i)\btextMME\b`), "text_mme"},
}

var syntaxRules = []rule{
	// Interval arithmetic has to go before the bare CURRENT_DATE rule.
	{regexp.MustCompile(`CURRENT_DATE - INTERVAL '(\d+)' DAY`), "DATEADD(day, -${1}, GETDATE())"},
	{regexp.MustCompile(`NOW\(\)`), "GETDATE()"},
	{regexp.MustCompile(`CURRENT_DATE`), "CAST(GETDATE() AS DATE)"},
}

// Standardize normalizes a generated statement: canonical lowercase table
// names after FROM/JOIN, canonical column names, MSSQL date syntax, and a
// guaranteed trailing semicolon.
func Standardize(sql string) string {
	sql = knownTables.ReplaceAllStringFunc(sql, func(m string) string {
		parts := knownTables.FindStringSubmatch(m)
		return strings.ToUpper(parts[1]) + " " + strings.ToLower(parts[2])
	})

	for _, r := range columnRules {
		sql = r.re.ReplaceAllString(sql, r.repl)
	}
	for _, r := range syntaxRules {
		sql = r.re.ReplaceAllString(sql, r.repl)
	}

	sql = strings.TrimSpace(sql)
	if !strings.HasSuffix(sql, ";") {
		sql += ";"
	}
	return sql
}

var codeFence = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)\\s*```")

// ExtractSQL pulls the statement out of a model response, stripping a
// markdown code fence when one is present.
func ExtractSQL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "```") {
		if m := codeFence.FindStringSubmatch(raw); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return raw
}
