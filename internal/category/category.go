package category

// Category is one entry of the fixed choice list. Position is its index in
// display order.
type Category struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:      c.Name,
		IsDefault: c.Position == 0,
	}
}

func NewCategories(names []string) []*Category {
	out := make([]*Category, len(names))
	for i, n := range names {
		out[i] = &Category{Name: n, Position: i}
	}
	return out
}
