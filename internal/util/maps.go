package util

import "encoding/json"

// CloneMap returns a copy of m safe to mutate without affecting the source.
// Nested maps of the common map[string]any shape are cloned recursively;
// other values are copied by reference, which is acceptable because the
// engine treats context values as immutable once stored.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = CloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// EstimateTokens approximates the token cost of a value as one token per four
// bytes of its JSON encoding. A crude heuristic, but good enough to keep
// context packages inside their budget without a tokenizer dependency.
func EstimateTokens(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return (len(data) + 3) / 4
}

// TruncateToBudget drops whole entries from content until the estimated token
// cost fits the budget. Entries are dropped largest first so the package
// keeps as many distinct facts as possible. The input map is not mutated.
func TruncateToBudget(content map[string]any, budget int) map[string]any {
	out := CloneMap(content)
	if budget <= 0 {
		return map[string]any{}
	}
	for EstimateTokens(out) > budget && len(out) > 0 {
		largestKey := ""
		largestCost := -1
		for k, v := range out {
			cost := EstimateTokens(v)
			if cost > largestCost || (cost == largestCost && (largestKey == "" || k < largestKey)) {
				largestKey, largestCost = k, cost
			}
		}
		delete(out, largestKey)
	}
	return out
}
