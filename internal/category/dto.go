package category

type CategoryResponse struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
