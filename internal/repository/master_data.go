package repository

import (
	"context"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

// MasterDataRepository loads reference data and sales. Upserts are keyed on the natural
// key of each entity (store code, category name, sku, shelf code, staff store+name,
// product+shelf) and return the row id. Lookups wrap domain.ErrNotFound when missing.
type MasterDataRepository interface {
	UpsertStore(ctx context.Context, store *domain.Store) (int64, error)
	UpsertCategory(ctx context.Context, category *domain.Category) (int64, error)
	UpsertProduct(ctx context.Context, product *domain.Product) (int64, error)
	UpsertShelf(ctx context.Context, shelf *domain.Shelf) (int64, error)
	UpsertStaff(ctx context.Context, staff *domain.Staff) (int64, error)
	UpsertProductShelf(ctx context.Context, ps *domain.ProductShelf) (int64, error)
	InsertSale(ctx context.Context, sale *domain.SalesHistory) error

	StoreIDByCode(ctx context.Context, code string) (int64, error)
	CategoryIDByName(ctx context.Context, name string) (int64, error)
	ProductIDBySKU(ctx context.Context, sku string) (int64, error)
	ShelfIDByCode(ctx context.Context, code string) (int64, error)
}
