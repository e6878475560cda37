package models

import (
	"bytes"
	"encoding/json"
)

// Page is the single list envelope used past the client boundary
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type pageWire[T any] struct {
	Data  []T  `json:"data"`
	Count *int `json:"count"`
	Total *int `json:"total"`
}

// ParsePage normalizes the list shapes the upstream has been seen to return:
// {data, count}, {data, total} and a bare array. total wins over count.
func ParsePage[T any](body []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, err
		}
		if items == nil {
			items = []T{}
		}
		return Page[T]{Items: items, Total: len(items)}, nil
	}

	var w pageWire[T]
	if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return Page[T]{}, err
		}
	}

	page := Page[T]{Items: w.Data}
	if page.Items == nil {
		page.Items = []T{}
	}
	switch {
	case w.Total != nil:
		page.Total = *w.Total
	case w.Count != nil:
		page.Total = *w.Count
	default:
		page.Total = len(page.Items)
	}
	return page, nil
}

// TotalPages is the number of pages of the given size, at least 1
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
