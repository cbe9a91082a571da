package utils

import (
	"reflect"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a row struct in field order.
// Anonymous struct fields are flattened.
func StructTagValues(input any) []string {
	targetValue := structValue(input)

	result := make([]string, 0, targetValue.NumField())
	walkColumns(targetValue, func(column string, _ reflect.Value) {
		result = append(result, column)
	})

	return result
}

// StructToMap maps column names to field values, ready for squirrel's SetMap.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	walkColumns(structValue(input), func(column string, value reflect.Value) {
		result[column] = value.Interface()
	})

	return result
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return v
}

func walkColumns(v reflect.Value, fn func(column string, value reflect.Value)) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		tag := field.Tag.Get(ColumnTag)
		if tag == "-" {
			continue
		}

		if field.Anonymous && tag == "" && field.Type.Kind() == reflect.Struct {
			walkColumns(v.Field(i), fn)
			continue
		}

		if tag == "" {
			continue
		}

		fn(tag, v.Field(i))
	}
}
