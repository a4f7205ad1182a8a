package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from the exported `db`-tagged fields of a
// struct. A `cast` tag is applied to the placeholder, e.g. `cast:"jsonb"`.
func InsertModel(table string, model any) (string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	builder := InsertInto(table)
	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(strings.TrimSpace(field.Tag.Get("db")), ",")
		if col == "" || col == "-" {
			continue
		}
		builder.columns = append(builder.columns, assignment{
			column: col,
			value:  value.Field(i).Interface(),
			cast:   strings.TrimSpace(field.Tag.Get("cast")),
		})
	}

	if len(builder.columns) == 0 {
		return "", nil, fmt.Errorf("model has no db columns")
	}
	return builder.ToSQL()
}
