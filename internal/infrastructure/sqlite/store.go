package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/macroplate/backend/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// FoodStore implements domain.FoodRepository on SQLite
type FoodStore struct {
	db *sql.DB
}

// NewFoodStore opens (or creates) the database at dbPath and initializes
// the schema. Use ":memory:" for an ephemeral store.
func NewFoodStore(dbPath string) (*FoodStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &FoodStore{db: db}, nil
}

// List pages foods ordered by creation time descending. A non-empty search
// filters by case-insensitive substring match on name. No total count is
// computed; callers infer paging from the returned slice length.
func (s *FoodStore) List(ctx context.Context, limit, offset int, search string) ([]domain.StoredFood, error) {
	query := `
		SELECT id, name, brand, serving_size, serving_unit,
			calories, protein, carbs, fat, user_id, created_at, updated_at
		FROM foods
	`
	args := []interface{}{}

	if search != "" {
		query += ` WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'`
		args = append(args, search)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing foods: %w", err)
	}
	defer rows.Close()

	foods := []domain.StoredFood{}
	for rows.Next() {
		var food domain.StoredFood
		if err := rows.Scan(
			&food.ID, &food.Name, &food.Brand, &food.ServingSize, &food.ServingUnit,
			&food.Calories, &food.Protein, &food.Carbs, &food.Fat,
			&food.UserID, &food.CreatedAt, &food.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning food row: %w", err)
		}
		foods = append(foods, food)
	}

	return foods, rows.Err()
}

// GetByID returns the food with the given id, or (nil, nil) when absent
func (s *FoodStore) GetByID(ctx context.Context, id int64) (*domain.StoredFood, error) {
	query := `
		SELECT id, name, brand, serving_size, serving_unit,
			calories, protein, carbs, fat, user_id, created_at, updated_at
		FROM foods WHERE id = ?
	`

	food := &domain.StoredFood{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&food.ID, &food.Name, &food.Brand, &food.ServingSize, &food.ServingUnit,
		&food.Calories, &food.Protein, &food.Carbs, &food.Fat,
		&food.UserID, &food.CreatedAt, &food.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting food %d: %w", id, err)
	}

	return food, nil
}

// Create inserts a new food and returns it with id and timestamps set
func (s *FoodStore) Create(ctx context.Context, food *domain.StoredFood) (*domain.StoredFood, error) {
	now := time.Now().UTC()
	created := *food
	created.CreatedAt = now
	created.UpdatedAt = now

	query := `
		INSERT INTO foods (
			name, brand, serving_size, serving_unit,
			calories, protein, carbs, fat, user_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		created.Name, created.Brand, created.ServingSize, created.ServingUnit,
		created.Calories, created.Protein, created.Carbs, created.Fat,
		created.UserID, created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error creating food: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading inserted id: %w", err)
	}
	created.ID = id

	return &created, nil
}

// Update rewrites a food's mutable columns and bumps updated_at.
// Returns (nil, nil) when no row with that id exists.
func (s *FoodStore) Update(ctx context.Context, food *domain.StoredFood) (*domain.StoredFood, error) {
	query := `
		UPDATE foods SET
			name = ?, brand = ?, serving_size = ?, serving_unit = ?,
			calories = ?, protein = ?, carbs = ?, fat = ?, updated_at = ?
		WHERE id = ?
	`

	updatedAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query,
		food.Name, food.Brand, food.ServingSize, food.ServingUnit,
		food.Calories, food.Protein, food.Carbs, food.Fat,
		updatedAt, food.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating food %d: %w", food.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetByID(ctx, food.ID)
}

// Delete removes a food by id
func (s *FoodStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting food %d: %w", id, err)
	}
	return nil
}

// Close closes the underlying database handle
func (s *FoodStore) Close() error {
	return s.db.Close()
}
