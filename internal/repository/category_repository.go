package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inventory-backoffice/internal/domain"
)

const categoriesResource = "categories"

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	client ResourceClient
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(client ResourceClient) CategoryRepository {
	return &categoryRepository{client: client}
}

// List retrieves all categories ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	params := ListParams{
		Page:     1,
		PageSize: snapshotPageSize,
		Sorters:  []Sorter{{Field: "name", Order: SortOrderAsc}},
	}

	categories := []domain.Category{}
	if _, err := r.client.List(ctx, categoriesResource, params, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.client.Get(ctx, categoriesResource, strconv.FormatInt(id, 10), category)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// Create adds a new category
func (r *categoryRepository) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	category := &domain.Category{}
	if err := r.client.Create(ctx, categoriesResource, input, category); err != nil {
		return nil, categoryError("create", err)
	}
	return category, nil
}

// Update replaces the writable fields of a category
func (r *categoryRepository) Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error) {
	category := &domain.Category{}
	if err := r.client.Update(ctx, categoriesResource, strconv.FormatInt(id, 10), input, category); err != nil {
		return nil, categoryError("update", err)
	}
	return category, nil
}

// Delete removes a category
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, categoriesResource, strconv.FormatInt(id, 10)); err != nil {
		return categoryError("delete", err)
	}
	return nil
}

func categoryError(op string, err error) error {
	switch {
	case errors.Is(err, ErrResourceNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, ErrResourceConflict):
		return ErrCategoryAlreadyExists
	}
	return fmt.Errorf("failed to %s category: %w", op, err)
}
