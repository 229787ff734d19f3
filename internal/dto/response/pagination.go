package response

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type Paginated[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func NewPaginated[T any](items []T, page, limit int, total int64) Paginated[T] {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	if items == nil {
		items = []T{}
	}

	return Paginated[T]{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
