package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fulfillment-service/internal/domain"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the Postgres-backed implementation of the product, order,
// payment and event-log repositories.
type Store struct {
	db *sqlx.DB
}

// NewStore connects to Postgres and configures the pool.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection.
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// FindProductByID retrieves a product by id.
func (s *Store) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SaveProduct upserts a product, including its current stock level.
func (s *Store) SaveProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, unit_price, stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, unit_price = EXCLUDED.unit_price, stock = EXCLUDED.stock`

	_, err := s.db.ExecContext(ctx, query,
		product.ID, product.Name, product.UnitPrice, product.Stock)
	return err
}

// IsEventProcessed checks whether an event has already been consumed.
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed records a consumed event id.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
