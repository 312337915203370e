package category

import (
	"log/slog"
)

// Service serves the configured category list. The list is fixed for the
// lifetime of the process.
type Service struct {
	categories []*Category
	byName     map[string]*Category
	logger     *slog.Logger
}

func NewService(names []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cats := NewCategories(names)
	byName := make(map[string]*Category, len(cats))
	for _, c := range cats {
		byName[c.Name] = c
	}
	return &Service{
		categories: cats,
		byName:     byName,
		logger:     logger,
	}
}

func (s *Service) GetAllCategories() []CategoryResponse {
	out := make([]CategoryResponse, len(s.categories))
	for i, c := range s.categories {
		out[i] = c.ToResponse()
	}
	return out
}

func (s *Service) GetCategoryByName(name string) (*CategoryResponse, bool) {
	c, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	resp := c.ToResponse()
	return &resp, true
}

func (s *Service) IsValidCategory(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Default returns the category preselected on a fresh form.
func (s *Service) Default() string {
	if len(s.categories) == 0 {
		return ""
	}
	return s.categories[0].Name
}

func (s *Service) Names() []string {
	out := make([]string, len(s.categories))
	for i, c := range s.categories {
		out[i] = c.Name
	}
	return out
}
