package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

// IngestRepository writes seed data through a plain database/sql handle so the seed
// CLI can run on the pgx stdlib driver.
type IngestRepository struct {
	db *sql.DB
}

func NewIngestRepository(db *sql.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) UpsertStore(ctx context.Context, store *domain.Store) (int64, error) {
	query := `
		INSERT INTO stores (code, name, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (code)
		DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, store.Code, store.Name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert store: %w", err)
	}
	store.ID = id
	return id, nil
}

func (r *IngestRepository) UpsertCategory(ctx context.Context, category *domain.Category) (int64, error) {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, category.Name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert category: %w", err)
	}
	category.ID = id
	return id, nil
}

func (r *IngestRepository) UpsertProduct(ctx context.Context, product *domain.Product) (int64, error) {
	query := `
		INSERT INTO products (sku, name, category_id, package_size, unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku)
		DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			package_size = EXCLUDED.package_size,
			unit = EXCLUDED.unit
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		product.SKU,
		product.Name,
		product.CategoryID,
		product.PackageSize,
		product.Unit,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product: %w", err)
	}
	product.ID = id
	return id, nil
}

func (r *IngestRepository) UpsertShelf(ctx context.Context, shelf *domain.Shelf) (int64, error) {
	query := `
		INSERT INTO shelves (code, store_id, category_id, capacity, location)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code)
		DO UPDATE SET
			store_id = EXCLUDED.store_id,
			category_id = EXCLUDED.category_id,
			capacity = EXCLUDED.capacity,
			location = EXCLUDED.location
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		shelf.Code,
		shelf.StoreID,
		shelf.CategoryID,
		shelf.Capacity,
		shelf.Location,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert shelf: %w", err)
	}
	shelf.ID = id
	return id, nil
}

func (r *IngestRepository) UpsertStaff(ctx context.Context, staff *domain.Staff) (int64, error) {
	query := `
		INSERT INTO staff (store_id, name, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_id, name) DO UPDATE SET role = EXCLUDED.role
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, staff.StoreID, staff.Name, staff.Role).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert staff: %w", err)
	}
	staff.ID = id
	return id, nil
}

func (r *IngestRepository) UpsertProductShelf(ctx context.Context, ps *domain.ProductShelf) (int64, error) {
	query := `
		INSERT INTO product_shelves (product_id, shelf_id, quantity, max_capacity, last_restocked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, shelf_id)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			max_capacity = EXCLUDED.max_capacity,
			last_restocked_at = COALESCE(EXCLUDED.last_restocked_at, product_shelves.last_restocked_at)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		ps.ProductID,
		ps.ShelfID,
		ps.Quantity,
		ps.MaxCapacity,
		ps.LastRestockedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product shelf: %w", err)
	}
	ps.ID = id
	return id, nil
}

func (r *IngestRepository) InsertSale(ctx context.Context, sale *domain.SalesHistory) error {
	query := `
		INSERT INTO sales_history (store_id, product_id, quantity, sale_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, sale.StoreID, sale.ProductID, sale.Quantity, sale.SaleTime).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (r *IngestRepository) StoreIDByCode(ctx context.Context, code string) (int64, error) {
	return r.lookupID(ctx, "store "+code, `SELECT id FROM stores WHERE code = $1`, code)
}

func (r *IngestRepository) CategoryIDByName(ctx context.Context, name string) (int64, error) {
	return r.lookupID(ctx, "category "+name, `SELECT id FROM categories WHERE name = $1`, name)
}

func (r *IngestRepository) ProductIDBySKU(ctx context.Context, sku string) (int64, error) {
	return r.lookupID(ctx, "product "+sku, `SELECT id FROM products WHERE sku = $1`, sku)
}

func (r *IngestRepository) ShelfIDByCode(ctx context.Context, code string) (int64, error) {
	return r.lookupID(ctx, "shelf "+code, `SELECT id FROM shelves WHERE code = $1`, code)
}

func (r *IngestRepository) lookupID(ctx context.Context, what, query string, key string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s: %w", what, err)
	}
	return id, nil
}
