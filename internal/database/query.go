package database

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/koustreak/rsadapter/internal/errs"
)

// comparisonOps take exactly one bound value.
var comparisonOps = map[string]bool{
	"=": true, "!=": true, "<>": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"LIKE": true, "ILIKE": true, "NOT LIKE": true, "NOT ILIKE": true,
}

// listOps take a non-empty slice, one placeholder per element.
var listOps = map[string]bool{"IN": true, "NOT IN": true}

// nullOps take no value.
var nullOps = map[string]bool{"IS NULL": true, "IS NOT NULL": true}

// SelectBuilder constructs a parameterized SELECT query using a fluent API.
// Values are never interpolated into the SQL string; they are always passed
// as $n args. Operators are checked against a fixed allowlist because the
// operator position cannot be parameterized.
//
// Usage:
//
//	sql, args, err := Select("analytics.events").
//	    Columns("id", "kind", "amount").
//	    Where("kind", "IN", []string{"purchase", "refund"}).
//	    Where("deleted_at", "IS NULL", nil).
//	    OrderBy("occurred_at", Desc).
//	    Limit(20).
//	    Build()
type SelectBuilder struct {
	table   string
	columns []string
	where   []whereClause
	orderBy []orderClause
	limit   *int
	offset  *int
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

type whereClause struct {
	column string
	op     string
	value  any
}

type orderClause struct {
	column string
	dir    SortDirection
}

// Select starts a new SelectBuilder for the given table. The table may be
// schema-qualified.
func Select(table string) *SelectBuilder {
	return &SelectBuilder{table: table}
}

// Table returns the table the builder reads from.
func (b *SelectBuilder) Table() string {
	return b.table
}

// Columns restricts the SELECT to the specified columns.
// If not called, SELECT * is used.
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = cols
	return b
}

// Where adds a condition; multiple calls are combined with AND. value is
// ignored for IS NULL / IS NOT NULL and must be a slice for IN / NOT IN.
func (b *SelectBuilder) Where(column, op string, value any) *SelectBuilder {
	b.where = append(b.where, whereClause{column, op, value})
	return b
}

// OrderBy appends an ORDER BY clause for the given column and direction.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.orderBy = append(b.orderBy, orderClause{column, dir})
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// Offset sets the number of rows to skip (for pagination).
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = &n
	return b
}

// referencedColumns lists every column the query names, in clause order.
func (b *SelectBuilder) referencedColumns() []string {
	out := append([]string(nil), b.columns...)
	for _, w := range b.where {
		out = append(out, w.column)
	}
	for _, o := range b.orderBy {
		out = append(out, o.column)
	}
	return out
}

// checkColumns rejects columns that are not in known.
func (b *SelectBuilder) checkColumns(known map[string]Column) error {
	for _, c := range b.referencedColumns() {
		if _, ok := known[c]; !ok {
			return errs.Newf(errs.ErrKindInvalidInput, "unknown column %q on %s", c, b.table)
		}
	}
	return nil
}

// Build produces the final SQL string and argument slice.
func (b *SelectBuilder) Build() (string, []any, error) {
	cols := "*"
	if len(b.columns) > 0 {
		quoted := make([]string, len(b.columns))
		for i, c := range b.columns {
			quoted[i] = QuoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteTableName(b.table))

	var args []any

	// --- WHERE ---
	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, w := range b.where {
			op := strings.Join(strings.Fields(strings.ToUpper(w.op)), " ")
			col := QuoteIdent(w.column)

			switch {
			case comparisonOps[op]:
				args = append(args, w.value)
				parts = append(parts, fmt.Sprintf("%s %s $%d", col, op, len(args)))
			case nullOps[op]:
				parts = append(parts, col+" "+op)
			case listOps[op]:
				values, err := listValues(w.value)
				if err != nil {
					return "", nil, err
				}
				ph := make([]string, len(values))
				for i, v := range values {
					args = append(args, v)
					ph[i] = "$" + strconv.Itoa(len(args))
				}
				parts = append(parts, fmt.Sprintf("%s %s (%s)", col, op, strings.Join(ph, ", ")))
			default:
				return "", nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported WHERE operator: %q", w.op)
			}
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	// --- ORDER BY ---
	if len(b.orderBy) > 0 {
		parts := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts[i] = QuoteIdent(o.column) + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	// LIMIT and OFFSET are validated ints and are inlined.
	if b.limit != nil {
		if *b.limit < 0 {
			return "", nil, errs.New(errs.ErrKindInvalidInput, "limit must not be negative")
		}
		sb.WriteString(" LIMIT " + strconv.Itoa(*b.limit))
	}
	if b.offset != nil {
		if *b.offset < 0 {
			return "", nil, errs.New(errs.ErrKindInvalidInput, "offset must not be negative")
		}
		sb.WriteString(" OFFSET " + strconv.Itoa(*b.offset))
	}

	return sb.String(), args, nil
}

// listValues flattens a slice or array argument of IN / NOT IN.
func listValues(v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "IN needs a slice, got %T", v)
	}
	if rv.Len() == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "IN needs at least one value")
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
