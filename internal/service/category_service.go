package service

import (
	"context"
	"fmt"

	"halal-directory/internal/domain"
	"halal-directory/internal/repository"
)

// CategoryService defines the interface for category queries
type CategoryService interface {
	List(ctx context.Context, ids []int64) ([]domain.Category, error)
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) List(ctx context.Context, ids []int64) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
