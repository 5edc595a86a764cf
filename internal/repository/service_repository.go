package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/geo"
)

var (
	ErrServiceNotFound = errors.New("service not found")
)

// DefaultPageSize is the fixed page size for listing searches
const DefaultPageSize = 10

// MaxPage keeps the page offset of a default-size page inside a Postgres integer
const MaxPage = math.MaxInt32 / DefaultPageSize

// SearchFilter describes a listing search. A nil Center disables the spatial filter.
type SearchFilter struct {
	Text           string
	Center         *domain.Coordinates
	RadiusMeters   float64
	CreatedAfter   *time.Time
	OrderByRecency bool
	Page           int
	PageSize       int
}

// ServiceRepository defines the interface for listing data access
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	FindByID(ctx context.Context, id int64) (*domain.Service, error)
	Update(ctx context.Context, id int64, update domain.ServiceUpdate) (*domain.Service, error)
	SetImageURL(ctx context.Context, id int64, imageURL string) error
	Search(ctx context.Context, filter SearchFilter) ([]*domain.Service, int, error)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type serviceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new instance of ServiceRepository
func NewServiceRepository(db *sql.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

const serviceColumns = `
	s.id, s.name, s.description, s.category_id,
	c.id, c.name, c.parent_id,
	s.street_address, s.city, s.state, s.postal_code, s.country,
	s.latitude, s.longitude,
	s.phone_number, s.website, s.email, s.hours,
	s.is_halal_certified, s.average_rating, s.review_count,
	s.image_url, s.is_claimed, s.created_at, s.updated_at`

const serviceFrom = `
	FROM services s
	JOIN categories c ON c.id = s.category_id`

// pointExpr builds a geography point from longitude and latitude placeholders
func pointExpr(lonArg, latArg string) string {
	return fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s::double precision, %s::double precision), 4326)::geography", lonArg, latArg)
}

// Create inserts a listing and its derived point in one transaction
func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, service.CategoryID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return ErrCategoryNotFound
	}

	lat, lon := nullableCoordinates(service.Location)

	query := fmt.Sprintf(`
		INSERT INTO services (
			name, description, category_id, street_address, city, state, postal_code, country,
			latitude, longitude, location,
			phone_number, website, email, hours, is_halal_certified, image_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, %s, $11, $12, $13, $14, $15, $16)
		RETURNING id, average_rating, review_count, is_claimed, created_at, updated_at
	`, pointExpr("$10", "$9"))

	err = tx.QueryRowContext(
		ctx,
		query,
		service.Name,
		service.Description,
		service.CategoryID,
		service.StreetAddress,
		service.City,
		service.State,
		service.PostalCode,
		service.Country,
		lat,
		lon,
		service.PhoneNumber,
		service.Website,
		service.Email,
		nullableJSON(service.Hours),
		service.IsHalalCertified,
		service.ImageURL,
	).Scan(
		&service.ID,
		&service.AverageRating,
		&service.ReviewCount,
		&service.IsClaimed,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create service: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit service: %w", err)
	}

	return nil
}

// FindByID retrieves a listing with its category expanded
func (r *serviceRepository) FindByID(ctx context.Context, id int64) (*domain.Service, error) {
	return findServiceByID(ctx, r.db, id)
}

func findServiceByID(ctx context.Context, q queryer, id int64) (*domain.Service, error) {
	query := `SELECT` + serviceColumns + `, NULL::double precision` + serviceFrom + `
		WHERE s.id = $1`

	service, err := scanService(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}

	return service, nil
}

// Update writes only the fields present in update and returns the full row
func (r *serviceRepository) Update(ctx context.Context, id int64, update domain.ServiceUpdate) (*domain.Service, error) {
	sets, args := buildUpdateSet(update)
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if update.CategoryID != nil {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, *update.CategoryID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return nil, ErrCategoryNotFound
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE services SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrServiceNotFound
	}

	service, err := findServiceByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit service update: %w", err)
	}

	return service, nil
}

// buildUpdateSet returns SET assignments numbered from $1 in a stable column order
func buildUpdateSet(u domain.ServiceUpdate) ([]string, []any) {
	var (
		sets []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.CategoryID != nil {
		add("category_id", *u.CategoryID)
	}
	if u.StreetAddress != nil {
		add("street_address", *u.StreetAddress)
	}
	if u.City != nil {
		add("city", *u.City)
	}
	if u.State != nil {
		add("state", *u.State)
	}
	if u.PostalCode != nil {
		add("postal_code", *u.PostalCode)
	}
	if u.Country != nil {
		add("country", *u.Country)
	}
	if u.PhoneNumber != nil {
		add("phone_number", *u.PhoneNumber)
	}
	if u.Website != nil {
		add("website", nullIfEmpty(*u.Website))
	}
	if u.Email != nil {
		add("email", nullIfEmpty(*u.Email))
	}
	if u.Hours != nil {
		add("hours", nullableJSON(u.Hours))
	}
	if u.IsHalalCertified != nil {
		add("is_halal_certified", *u.IsHalalCertified)
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}
	if u.Location != nil {
		add("latitude", u.Location.Latitude)
		latArg := fmt.Sprintf("$%d", len(args))
		add("longitude", u.Location.Longitude)
		lonArg := fmt.Sprintf("$%d", len(args))
		sets = append(sets, "location = "+pointExpr(lonArg, latArg))
	}

	return sets, args
}

// SetImageURL records the public URL of an uploaded listing image
func (r *serviceRepository) SetImageURL(ctx context.Context, id int64, imageURL string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE services SET image_url = $1 WHERE id = $2`, imageURL, id)
	if err != nil {
		return fmt.Errorf("failed to set image url: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// Search runs a paged substring and optional radius search.
// The total is counted separately from the page slice.
func (r *serviceRepository) Search(ctx context.Context, filter SearchFilter) ([]*domain.Service, int, error) {
	q := buildSearchQuery(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, q.count, q.countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	services := []*domain.Service{}
	if total == 0 {
		return services, 0, nil
	}

	rows, err := r.db.QueryContext(ctx, q.list, q.listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, service)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating services: %w", err)
	}

	return services, total, nil
}

type searchQuery struct {
	list      string
	listArgs  []any
	count     string
	countArgs []any
}

// buildSearchQuery assembles the page query and its count query sharing one WHERE clause
func buildSearchQuery(f SearchFilter) searchQuery {
	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	// Past the last addressable row the page is empty either way
	if maxPage := math.MaxInt32 / pageSize; page > maxPage {
		page = maxPage
	}

	var (
		where    []string
		args     []any
		distance = "NULL::double precision"
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if text := strings.TrimSpace(f.Text); text != "" {
		p := arg("%" + escapeLike(text) + "%")
		where = append(where, fmt.Sprintf(`(s.name ILIKE %s ESCAPE '\' OR s.description ILIKE %s ESCAPE '\')`, p, p))
	}

	if f.Center != nil {
		radius := f.RadiusMeters
		if radius <= 0 {
			radius = geo.SearchRadiusMeters
		}
		point := pointExpr(arg(f.Center.Longitude), arg(f.Center.Latitude))
		where = append(where, fmt.Sprintf("s.location IS NOT NULL AND ST_DWithin(s.location, %s, %s)", point, arg(radius)))
		distance = fmt.Sprintf("ST_Distance(s.location, %s)", point)
	}

	if f.CreatedAfter != nil {
		where = append(where, fmt.Sprintf("s.created_at >= %s", arg(*f.CreatedAfter)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	orderBy := "s.id ASC"
	switch {
	case f.OrderByRecency:
		orderBy = "s.created_at DESC, s.id DESC"
	case f.Center != nil:
		orderBy = "distance_meters ASC, s.id ASC"
	}

	countArgs := append([]any(nil), args...)
	count := fmt.Sprintf("SELECT COUNT(*) FROM services s %s", whereClause)

	limitArg := arg(pageSize)
	offsetArg := arg((page - 1) * pageSize)
	list := fmt.Sprintf(`SELECT %s, %s AS distance_meters %s
		%s
		ORDER BY %s
		LIMIT %s OFFSET %s`,
		serviceColumns, distance, serviceFrom, whereClause, orderBy, limitArg, offsetArg)

	return searchQuery{list: list, listArgs: args, count: count, countArgs: countArgs}
}

// escapeLike makes user text match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanService expects serviceColumns followed by a distance column
func scanService(row rowScanner) (*domain.Service, error) {
	var (
		s              domain.Service
		category       domain.Category
		parentID       sql.NullInt64
		lat, lon       sql.NullFloat64
		website, email sql.NullString
		imageURL       sql.NullString
		hours          []byte
		distance       sql.NullFloat64
	)

	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.CategoryID,
		&category.ID, &category.Name, &parentID,
		&s.StreetAddress, &s.City, &s.State, &s.PostalCode, &s.Country,
		&lat, &lon,
		&s.PhoneNumber, &website, &email, &hours,
		&s.IsHalalCertified, &s.AverageRating, &s.ReviewCount,
		&imageURL, &s.IsClaimed, &s.CreatedAt, &s.UpdatedAt,
		&distance,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		category.ParentID = &parentID.Int64
	}
	s.Category = &category

	if lat.Valid && lon.Valid {
		s.Location = &domain.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if website.Valid {
		s.Website = &website.String
	}
	if email.Valid {
		s.Email = &email.String
	}
	if imageURL.Valid {
		s.ImageURL = &imageURL.String
	}
	if len(hours) > 0 {
		s.Hours = json.RawMessage(hours)
	}
	if distance.Valid {
		s.DistanceMeters = &distance.Float64
	}

	return &s, nil
}

func nullableCoordinates(c *domain.Coordinates) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Latitude, Valid: true}, sql.NullFloat64{Float64: c.Longitude, Valid: true}
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
