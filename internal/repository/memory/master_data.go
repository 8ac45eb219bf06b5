package memory

import (
	"context"
	"fmt"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

func (r *Repository) UpsertStore(_ context.Context, store *domain.Store) (int64, error) {
	err := r.write(func(s *state) error {
		for id, existing := range s.stores {
			if existing.Code == store.Code {
				existing.Name = store.Name
				existing.UpdatedAt = store.UpdatedAt
				s.stores[id] = existing
				store.ID = id
				return nil
			}
		}
		store.ID = s.nextID("stores")
		s.stores[store.ID] = *store
		return nil
	})
	return store.ID, err
}

func (r *Repository) UpsertCategory(_ context.Context, category *domain.Category) (int64, error) {
	err := r.write(func(s *state) error {
		for id, existing := range s.categories {
			if existing.Name == category.Name {
				category.ID = id
				return nil
			}
		}
		category.ID = s.nextID("categories")
		s.categories[category.ID] = *category
		return nil
	})
	return category.ID, err
}

func (r *Repository) UpsertProduct(_ context.Context, product *domain.Product) (int64, error) {
	err := r.write(func(s *state) error {
		if _, ok := s.categories[product.CategoryID]; !ok {
			return fmt.Errorf("product category %d: %w", product.CategoryID, domain.ErrConflict)
		}
		for id, existing := range s.products {
			if existing.SKU == product.SKU {
				product.ID = id
				s.products[id] = *product
				return nil
			}
		}
		product.ID = s.nextID("products")
		s.products[product.ID] = *product
		return nil
	})
	return product.ID, err
}

func (r *Repository) UpsertShelf(_ context.Context, shelf *domain.Shelf) (int64, error) {
	err := r.write(func(s *state) error {
		if _, ok := s.stores[shelf.StoreID]; !ok {
			return fmt.Errorf("shelf store %d: %w", shelf.StoreID, domain.ErrConflict)
		}
		if shelf.Capacity < 0 {
			return fmt.Errorf("shelf capacity %d: %w", shelf.Capacity, domain.ErrInvalidInput)
		}
		for id, existing := range s.shelves {
			if existing.Code == shelf.Code {
				shelf.ID = id
				s.shelves[id] = *shelf
				return nil
			}
		}
		shelf.ID = s.nextID("shelves")
		s.shelves[shelf.ID] = *shelf
		return nil
	})
	return shelf.ID, err
}

func (r *Repository) UpsertStaff(_ context.Context, staff *domain.Staff) (int64, error) {
	err := r.write(func(s *state) error {
		if _, ok := s.stores[staff.StoreID]; !ok {
			return fmt.Errorf("staff store %d: %w", staff.StoreID, domain.ErrConflict)
		}
		for id, existing := range s.staff {
			if existing.StoreID == staff.StoreID && existing.Name == staff.Name {
				staff.ID = id
				s.staff[id] = *staff
				return nil
			}
		}
		staff.ID = s.nextID("staff")
		s.staff[staff.ID] = *staff
		return nil
	})
	return staff.ID, err
}

func (r *Repository) UpsertProductShelf(_ context.Context, ps *domain.ProductShelf) (int64, error) {
	err := r.write(func(s *state) error {
		if _, ok := s.products[ps.ProductID]; !ok {
			return fmt.Errorf("product shelf product %d: %w", ps.ProductID, domain.ErrConflict)
		}
		if _, ok := s.shelves[ps.ShelfID]; !ok {
			return fmt.Errorf("product shelf shelf %d: %w", ps.ShelfID, domain.ErrConflict)
		}
		row := domain.ProductShelf{
			ProductID:       ps.ProductID,
			ShelfID:         ps.ShelfID,
			Quantity:        ps.Quantity,
			MaxCapacity:     ps.MaxCapacity,
			LastRestockedAt: ps.LastRestockedAt,
		}
		for id, existing := range s.productShelves {
			if existing.ProductID == ps.ProductID && existing.ShelfID == ps.ShelfID {
				if row.LastRestockedAt == nil {
					row.LastRestockedAt = existing.LastRestockedAt
				}
				row.ID = id
				s.productShelves[id] = row
				ps.ID = id
				return nil
			}
		}
		row.ID = s.nextID("product_shelves")
		s.productShelves[row.ID] = row
		ps.ID = row.ID
		return nil
	})
	return ps.ID, err
}

func (r *Repository) InsertSale(_ context.Context, sale *domain.SalesHistory) error {
	return r.write(func(s *state) error {
		if _, ok := s.products[sale.ProductID]; !ok {
			return fmt.Errorf("sale product %d: %w", sale.ProductID, domain.ErrConflict)
		}
		sale.ID = s.nextID("sales")
		s.sales = append(s.sales, *sale)
		return nil
	})
}

func (r *Repository) StoreIDByCode(_ context.Context, code string) (int64, error) {
	var id int64
	r.read(func(s *state) {
		for _, st := range s.stores {
			if st.Code == code {
				id = st.ID
				return
			}
		}
	})
	return found(id, "store "+code)
}

func (r *Repository) CategoryIDByName(_ context.Context, name string) (int64, error) {
	var id int64
	r.read(func(s *state) {
		for _, c := range s.categories {
			if c.Name == name {
				id = c.ID
				return
			}
		}
	})
	return found(id, "category "+name)
}

func (r *Repository) ProductIDBySKU(_ context.Context, sku string) (int64, error) {
	var id int64
	r.read(func(s *state) {
		for _, p := range s.products {
			if p.SKU == sku {
				id = p.ID
				return
			}
		}
	})
	return found(id, "product "+sku)
}

func (r *Repository) ShelfIDByCode(_ context.Context, code string) (int64, error) {
	var id int64
	r.read(func(s *state) {
		for _, sh := range s.shelves {
			if sh.Code == code {
				id = sh.ID
				return
			}
		}
	})
	return found(id, "shelf "+code)
}

func found(id int64, what string) (int64, error) {
	if id == 0 {
		return 0, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return id, nil
}
