package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type summaryRow struct {
	key   string
	value string
}

// flattenSummary turns a json summary into one row per leaf, keys are the dot
// separated path to the leaf and arrays of scalars are joined with "; ".
func flattenSummary(summary any) ([]summaryRow, error) {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	var decoded any
	err = json.Unmarshal(encoded, &decoded)
	if err != nil {
		return nil, err
	}

	var rows []summaryRow
	flatten("", decoded, &rows)
	return rows, nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalar(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64, bool:
		return fmt.Sprint(v), true
	}
	return "", false
}

func flatten(prefix string, value any, out *[]summaryRow) {
	if s, ok := scalar(value); ok {
		*out = append(*out, summaryRow{key: prefix, value: s})
		return
	}

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flatten(joinKey(prefix, key), v[key], out)
		}
	case []any:
		values := make([]string, 0, len(v))
		allScalar := true
		for _, item := range v {
			s, ok := scalar(item)
			if !ok {
				allScalar = false
				break
			}
			values = append(values, s)
		}
		if allScalar {
			*out = append(*out, summaryRow{key: prefix, value: strings.Join(values, "; ")})
			return
		}
		for i, item := range v {
			flatten(joinKey(prefix, fmt.Sprint(i)), item, out)
		}
	}
}
