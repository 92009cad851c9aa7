// Copyright © 2024 The vjailbreak authors

package utils

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
)

// PrintTable writes a slice of structs, or of struct pointers, as aligned
// columns. Only the named fields are printed, or every exported field when
// none is named. Slice fields are joined with commas.
func PrintTable(out io.Writer, data interface{}, fields ...string) error {
	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return fmt.Errorf("input must be a slice")
	}
	if val.Len() == 0 {
		_, err := fmt.Fprintln(out, "No data to display.")
		return err
	}

	elem := val.Type().Elem()
	isPtr := elem.Kind() == reflect.Ptr
	if isPtr {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("slice elements must be structs or pointers to structs")
	}

	var headers []string
	var indices []int
	if len(fields) == 0 {
		for i := 0; i < elem.NumField(); i++ {
			if f := elem.Field(i); f.IsExported() {
				headers = append(headers, strings.ToUpper(f.Name))
				indices = append(indices, i)
			}
		}
	} else {
		for _, name := range fields {
			f, ok := elem.FieldByName(name)
			if !ok || len(f.Index) != 1 {
				return fmt.Errorf("field %q not found in %s", name, elem.Name())
			}
			headers = append(headers, strings.ToUpper(name))
			indices = append(indices, f.Index[0])
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for i := 0; i < val.Len(); i++ {
		row := val.Index(i)
		if isPtr {
			row = row.Elem()
		}
		values := make([]string, len(indices))
		for k, j := range indices {
			values[k] = cell(row.Field(j))
		}
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}
	return w.Flush()
}

func cell(v reflect.Value) string {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = v.Index(i).String()
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("%v", v.Interface())
}
