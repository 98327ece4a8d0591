package common

import (
	"fmt"
	"regexp"
	"strings"
)

// PlaceholderFunc renders the bind marker for the n-th (1-based) parameter of a statement.
type PlaceholderFunc func(n int) string

// QuestionMark is the placeholder style of MySQL, MariaDB and SQLite.
func QuestionMark(int) string { return "?" }

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GenPreparedStmt generates a single-row INSERT with one placeholder per field.
// Table and field names are interpolated as given; callers that accept names
// from untrusted input should run ValidateIdentifiers or QuoteIdentifiers first.
func GenPreparedStmt(table string, fields []string, placeholder PlaceholderFunc) (string, error) {
	return GenBatchInsertStmt(table, fields, 1, placeholder)
}

// GenBatchInsertStmt generates a multi-row INSERT carrying rows value tuples.
// Placeholders are numbered left to right across all tuples.
func GenBatchInsertStmt(table string, fields []string, rows int, placeholder PlaceholderFunc) (string, error) {
	// Validate inputs
	if table == "" || len(fields) == 0 {
		return "", fmt.Errorf("table name and fields are required")
	}
	if rows < 1 {
		return "", fmt.Errorf("at least one row is required, got %d", rows)
	}
	if placeholder == nil {
		placeholder = QuestionMark
	}

	var builder strings.Builder
	builder.Grow(len(table) + len(fields)*(8+rows*4) + 32) // Heuristic pre-allocation

	builder.WriteString("INSERT INTO ")
	builder.WriteString(table)
	builder.WriteString(" (")
	builder.WriteString(strings.Join(fields, ","))
	builder.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			builder.WriteByte(',')
		}
		builder.WriteByte('(')
		for i := range fields {
			if i > 0 {
				builder.WriteByte(',')
			}
			builder.WriteString(placeholder(n))
			n++
		}
		builder.WriteByte(')')
	}
	return builder.String(), nil
}

// ValidateIdentifiers checks that every name is a plain unquoted identifier
// that is not a reserved keyword. It returns the first offending name.
func ValidateIdentifiers(names []string) error {
	for idx, name := range names {
		if !identifier.MatchString(name) {
			return fmt.Errorf("column %d (%q) is not a plain identifier", idx+1, name)
		}
		if IsKeyword(name) {
			return fmt.Errorf("column %d (%q) is a reserved keyword", idx+1, name)
		}
	}
	return nil
}

// QuoteIdentifiers returns a copy of names passed through quote.
func QuoteIdentifiers(names []string, quote func(string) string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quote(name)
	}
	return quoted
}

// IsKeyword reports whether name is a reserved SQL keyword, ignoring case.
func IsKeyword(name string) bool {
	_, ok := keywordSet[strings.ToLower(name)]
	return ok
}

var keywordSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(KEYWORDS_LOWER))
	for _, kw := range KEYWORDS_LOWER {
		set[kw] = struct{}{}
	}
	return set
}()

// KEYWORDS_LOWER lists the SQLite keywords (https://sqlite.org/lang_keywords.html),
// which cover the reserved words of the other supported dialects closely enough
// for validation.
var KEYWORDS_LOWER = []string{
	"abort", "action", "add", "after", "all", "alter", "always", "analyze", "and", "as",
	"asc", "attach", "autoincrement", "before", "begin", "between", "by", "cascade", "case", "cast",
	"check", "collate", "column", "commit", "conflict", "constraint", "create", "cross", "current", "current_date",
	"current_time", "current_timestamp", "database", "default", "deferrable", "deferred", "delete", "desc", "detach", "distinct",
	"do", "drop", "each", "else", "end", "escape", "except", "exclude", "exclusive", "exists",
	"explain", "fail", "filter", "first", "following", "for", "foreign", "from", "full", "generated",
	"glob", "group", "groups", "having", "if", "ignore", "immediate", "in", "index", "indexed",
	"initially", "inner", "insert", "instead", "intersect", "into", "is", "isnull", "join", "key",
	"last", "left", "like", "limit", "match", "materialized", "natural", "no", "not", "nothing",
	"notnull", "null", "nulls", "of", "offset", "on", "or", "order", "others", "outer",
	"over", "partition", "plan", "pragma", "preceding", "primary", "query", "raise", "range", "recursive",
	"references", "regexp", "reindex", "release", "rename", "replace", "restrict", "returning", "right", "rollback",
	"row", "rows", "savepoint", "select", "set", "table", "temp", "temporary", "then", "ties",
	"to", "transaction", "trigger", "unbounded", "union", "unique", "update", "using", "vacuum", "values",
	"view", "virtual", "when", "where", "window", "with", "without",
}
