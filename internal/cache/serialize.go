package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// StableSerialize renders params as JSON with object keys sorted. Arrays made only of strings or
// only of numbers are sorted too, so list order does not change the key; other arrays keep their order.
func StableSerialize(params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", err
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var tree any
	if err := decoder.Decode(&tree); err != nil {
		return "", err
	}

	// encoding/json writes map keys in sorted order
	out, err := json.Marshal(canonicalize(tree))
	if err != nil {
		return "", fmt.Errorf("marshal canonical params: %w", err)
	}
	return string(out), nil
}

func canonicalize(node any) any {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			v[key] = canonicalize(child)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = canonicalize(child)
		}
		sortPrimitives(v)
		return v
	default:
		return v
	}
}

func sortPrimitives(items []any) {
	allStrings, allNumbers := true, true
	for _, item := range items {
		switch item.(type) {
		case string:
			allNumbers = false
		case json.Number:
			allStrings = false
		default:
			return
		}
	}

	switch {
	case allStrings:
		sort.SliceStable(items, func(i, j int) bool { return items[i].(string) < items[j].(string) })
	case allNumbers:
		sort.SliceStable(items, func(i, j int) bool {
			a, _ := items[i].(json.Number).Float64()
			b, _ := items[j].(json.Number).Float64()
			return a < b
		})
	}
}
