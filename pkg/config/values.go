package config

import (
	"fmt"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
)

// Schemaless value helpers. The YAML and TOML parsers hand back slightly
// different shapes (string keys vs interface keys, ints vs floats), so
// every extraction goes through these.

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func singleKey(m map[string]interface{}) (string, interface{}, error) {
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		return "", nil, errors.Newf(errors.ErrConfigValid,
			"expected a single-key map, got keys %v", keys)
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, errors.New(errors.ErrInternal, "unreachable")
}

func asList(v interface{}) ([]interface{}, bool) {
	t, ok := v.([]interface{})
	return t, ok
}

func asString(v interface{}) (string, bool) {
	t, ok := v.(string)
	return t, ok
}

func asStringSlice(v interface{}) ([]string, bool) {
	items, ok := asList(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			// TOML/YAML may parse bare numerics in extension lists.
			s = fmt.Sprintf("%v", item)
		}
		out = append(out, s)
	}
	return out, true
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}

func asBool(v interface{}) (bool, bool) {
	t, ok := v.(bool)
	return t, ok
}
