package batch

import (
	"fmt"

	"braceframe/internal/calc/brace"
)

type BatchInput struct {
	Items []brace.Input `json:"items"`
}

type BatchResult struct {
	Results []brace.Result `json:"results"`
}

// Calculate evaluates every item with c and stops at the first failure.
func Calculate(c *brace.Catalog, in BatchInput) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, ErrNoItems
	}
	if c == nil {
		c = brace.Default()
	}
	out := BatchResult{Results: make([]brace.Result, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := c.Calculate(item)
		if err != nil {
			return BatchResult{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
