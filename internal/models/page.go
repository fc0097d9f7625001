package models

import (
	"bytes"
	"encoding/json"
)

// Page is a paged list. The API answers either with a bare JSON array or with
// a page object carrying the items under "content".
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Content: items, TotalElements: int64(len(items)), TotalPages: 1, Size: len(items)}
		return nil
	}
	var out struct {
		Content       []T   `json:"content"`
		TotalElements int64 `json:"totalElements"`
		TotalPages    int   `json:"totalPages"`
		Number        int   `json:"number"`
		Size          int   `json:"size"`
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*p = Page[T](out)
	return nil
}

// PageQuery is the paging/sorting request shared by list endpoints.
type PageQuery struct {
	Page int
	Size int
	Sort string
}
