package model

type PaginationMeta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

type Page[T any] struct {
	Items []T            `json:"items"`
	Meta  PaginationMeta `json:"meta"`
}

func TotalPages(totalItems, itemsPerPage int) int {
	if itemsPerPage <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + itemsPerPage - 1) / itemsPerPage
}

// Normalize fills fields the backend left out. Values the backend did send are
// kept as they are.
func (m *PaginationMeta) Normalize() {
	if m.TotalPages == 0 {
		m.TotalPages = TotalPages(m.TotalItems, m.ItemsPerPage)
	}
}
