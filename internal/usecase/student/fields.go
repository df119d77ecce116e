package student

import (
	"reflect"
	"strings"
)

// jsonFieldName reports struct fields by their wire name in validation messages.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
