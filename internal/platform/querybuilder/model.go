package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ColumnsFromModel lists the db-tagged columns of a struct in field order.
func ColumnsFromModel(model any, skip ...string) ([]string, error) {
	cols, _, err := columnsAndValuesFromModel(model, skip)
	return cols, err
}

// InsertModel starts an insert from a struct's db-tagged fields, leaving out skip.
func InsertModel(table string, model any, skip ...string) (*InsertBuilder, error) {
	cols, vals, err := columnsAndValuesFromModel(model, skip)
	if err != nil {
		return nil, err
	}
	return InsertInto(table).Columns(cols...).Values(vals...), nil
}

func columnsAndValuesFromModel(model any, skip []string) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" || slices.Contains(skip, col) {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
