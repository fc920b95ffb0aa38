package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key derives the deterministic cache key for one logical invocation.
// Format: <route>:<hash>
// where hash is the hex SHA-256 of the canonical JSON of {params, query}.
// Identical route+params+query always produce the same key regardless of
// map iteration order; nil query values are dropped first so that an
// explicit nil and an absent key fingerprint identically.
func Key(routeName string, params map[string]string, query map[string]any) (string, error) {
	input := map[string]any{
		"params": normalizeParams(params),
		"query":  normalizeQuery(query),
	}

	canonical, err := canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize key input: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return routeName + ":" + hex.EncodeToString(hash[:]), nil
}

func normalizeParams(params map[string]string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func normalizeQuery(query map[string]any) map[string]any {
	out := make(map[string]any, len(query))
	for k, v := range query {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// Scalars use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}
