package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"halal-directory/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context, ids []int64) ([]domain.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a category; a non-nil ParentID must reference an existing category
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, parent_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	var parentID sql.NullInt64
	if category.ParentID != nil {
		parentID = sql.NullInt64{Int64: *category.ParentID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, category.Name, parentID).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if foreignKeyViolation(err) != "" {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

type subcategoryRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns top-level categories, or exactly the requested ids when given,
// each with its direct subcategories aggregated by the database.
func (r *categoryRepository) List(ctx context.Context, ids []int64) ([]domain.Category, error) {
	filter := "WHERE c.parent_id IS NULL"
	args := []any{}
	if len(ids) > 0 {
		filter = "WHERE c.id = ANY($1)"
		args = append(args, ids)
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.name, c.parent_id, c.created_at,
			COALESCE(
				json_agg(
					json_build_object('id', sc.id, 'name', sc.name, 'parent_id', sc.parent_id, 'created_at', sc.created_at)
					ORDER BY sc.name
				) FILTER (WHERE sc.id IS NOT NULL),
				'[]'
			) AS subcategories
		FROM categories c
		LEFT JOIN categories sc ON sc.parent_id = c.id
		%s
		GROUP BY c.id
		ORDER BY c.name ASC
	`, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var (
			category domain.Category
			parentID sql.NullInt64
			subs     []byte
		)
		if err := rows.Scan(&category.ID, &category.Name, &parentID, &category.CreatedAt, &subs); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if parentID.Valid {
			category.ParentID = &parentID.Int64
		}

		var children []subcategoryRow
		if err := json.Unmarshal(subs, &children); err != nil {
			return nil, fmt.Errorf("failed to decode subcategories: %w", err)
		}
		category.Subcategories = make([]domain.Category, 0, len(children))
		for _, child := range children {
			category.Subcategories = append(category.Subcategories, domain.Category{
				ID:        child.ID,
				Name:      child.Name,
				ParentID:  child.ParentID,
				CreatedAt: child.CreatedAt,
			})
		}

		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Exists reports whether a category with id is present
func (r *categoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return exists, nil
}
