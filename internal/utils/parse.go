package utils

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// DecodeTOMLFile decodes the file at path into v.
func DecodeTOMLFile(path string, v any) error {
	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// TOMLTables reads the top level tables of a TOML file as loose maps. A table
// whose values do not fit the typed config can still be read key by key.
func TOMLTables(path string) (map[string]map[string]any, error) {
	var doc map[string]any
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, err
	}
	tables := make(map[string]map[string]any)
	for name, val := range doc {
		if table, ok := val.(map[string]any); ok {
			tables[name] = table
		}
	}
	return tables, nil
}

// Lookup returns table[key] when it holds a T.
func Lookup[T any](table map[string]any, key string) (T, bool) {
	val, ok := table[key].(T)
	return val, ok
}

// LookupInt returns an integer value, TOML decodes every integer as int64.
func LookupInt(table map[string]any, key string) (int, bool) {
	val, ok := Lookup[int64](table, key)
	return int(val), ok
}

// LookupFloat returns a float value, accepting integers written without a fraction.
func LookupFloat(table map[string]any, key string) (float64, bool) {
	if val, ok := LookupInt(table, key); ok {
		return float64(val), true
	}
	return Lookup[float64](table, key)
}
