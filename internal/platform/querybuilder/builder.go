// Package querybuilder renders the small set of postgres statements the
// repositories need, with $n placeholders bound in call order.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errNoTable = errors.New("table is required")
	errNoWhere = errors.New("update without where is not allowed")
)

// statement accumulates SQL text and its positional arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

func (s *statement) bind(value any) string {
	s.args = append(s.args, value)
	return "$" + strconv.Itoa(len(s.args))
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c.render(s)
	}
}

func (s *statement) result() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition is one WHERE predicate; predicates are joined with AND.
type Condition interface {
	render(s *statement)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) render(s *statement) {
	s.write(c.column, " = ", s.bind(c.value))
}

type notBlankCondition struct {
	column string
}

// NotBlank matches rows where column is neither NULL nor blank.
func NotBlank(column string) Condition {
	return notBlankCondition{column: column}
}

func (c notBlankCondition) render(s *statement) {
	s.write(c.column, " IS NOT NULL AND btrim(", c.column, ") <> ''")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errors.New("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}

	var s statement
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.where)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.result()
}

// assignment is one column value; raw, when set, is emitted verbatim and
// cast, when set, is appended to the placeholder as ::cast.
type assignment struct {
	column string
	value  any
	cast   string
	raw    string
}

func (a assignment) render(s *statement) string {
	if a.raw != "" {
		return a.raw
	}
	ph := s.bind(a.value)
	if a.cast != "" {
		ph += "::" + a.cast
	}
	return ph
}

// fieldAssignments keeps the order of columns and drops the ones absent from
// values, so a partial field set never writes NULL over stored data.
func fieldAssignments(columns []string, values map[string]any) []assignment {
	out := make([]assignment, 0, len(columns))
	for _, column := range columns {
		if value, ok := values[column]; ok {
			out = append(out, assignment{column: column, value: value})
		}
	}
	return out
}

type InsertBuilder struct {
	table   string
	columns []assignment
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Column(column string, value any) *InsertBuilder {
	b.columns = append(b.columns, assignment{column: column, value: value})
	return b
}

// Fields appends the listed columns that are present in values.
func (b *InsertBuilder) Fields(columns []string, values map[string]any) *InsertBuilder {
	b.columns = append(b.columns, fieldAssignments(columns, values)...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.columns) == 0 {
		return "", nil, errors.New("insert columns are required")
	}

	names := make([]string, 0, len(b.columns))
	for _, a := range b.columns {
		names = append(names, a.column)
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (", strings.Join(names, ", "), ") VALUES (")
	for i, a := range b.columns {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.render(&s))
	}
	s.write(")")
	return s.result()
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetCast binds value with an explicit postgres cast, e.g. jsonb.
func (b *UpdateBuilder) SetCast(column string, value any, cast string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value, cast: cast})
	return b
}

// SetNow stamps column with the database clock.
func (b *UpdateBuilder) SetNow(column string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: "NOW()"})
	return b
}

// Fields sets the listed columns that are present in values.
func (b *UpdateBuilder) Fields(columns []string, values map[string]any) *UpdateBuilder {
	b.sets = append(b.sets, fieldAssignments(columns, values)...)
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.sets) == 0 {
		return "", nil, errors.New("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, errNoWhere
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ", a.render(&s))
	}
	s.where(b.where)
	return s.result()
}
