package db

import (
	"fmt"
	"strings"
)

// SearchQuery builds the COUNT and paged SELECT statements shared by the list
// and search operations of every repository, with placeholders in the
// dialect's syntax.
type SearchQuery struct {
	dialect Dialect
	from    string
	cols    string
	where   string
	args    []interface{}
	orderBy string
}

// NewSearchQuery creates a SearchQuery. from may include joins.
func NewSearchQuery(dialect Dialect, from, cols string) *SearchQuery {
	return &SearchQuery{dialect: dialect, from: from, cols: cols}
}

// Placeholder returns the parameter marker for the n-th (1-based) argument.
func (q *SearchQuery) Placeholder(n int) string {
	if q.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Add appends a WHERE fragment. Each "?" in clause is rewritten to the
// dialect's placeholder.
func (q *SearchQuery) Add(clause string, args ...interface{}) {
	q.where += " AND " + q.bind(clause)
	q.args = append(q.args, args...)
}

// AddEquals adds an exact match on column.
func (q *SearchQuery) AddEquals(column string, value interface{}) {
	q.Add(column+" = ?", value)
}

// AddKeyword adds a case-insensitive substring match of value against any
// of columns. An empty value adds nothing.
func (q *SearchQuery) AddKeyword(value string, columns ...string) {
	value = strings.TrimSpace(value)
	if value == "" || len(columns) == 0 {
		return
	}
	op := "LIKE"
	if q.dialect == Postgres {
		op = "ILIKE"
	}
	pattern := "%" + escapeLike(value) + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf(`%s %s ? ESCAPE '\'`, c, op)
		args[i] = pattern
	}
	q.Add("("+strings.Join(parts, " OR ")+")", args...)
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *SearchQuery) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// CountSQL returns the count query SQL.
func (q *SearchQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.from, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *SearchQuery) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *SearchQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.from, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	n := len(q.args)
	sql += fmt.Sprintf(" LIMIT %s OFFSET %s", q.Placeholder(n+1), q.Placeholder(n+2))
	return sql
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *SearchQuery) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

func (q *SearchQuery) bind(clause string) string {
	if q.dialect != Postgres {
		return clause
	}
	var b strings.Builder
	n := len(q.args)
	for _, r := range clause {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
