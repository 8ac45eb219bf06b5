package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Master data files, loaded in dependency order.
const (
	StoresFile         = "stores.csv"
	CategoriesFile     = "categories.csv"
	ProductsFile       = "products.csv"
	ShelvesFile        = "shelves.csv"
	StaffFile          = "staff.csv"
	ProductShelvesFile = "product_shelves.csv"
	SalesFile          = "sales.csv"
)

var saleTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Loader reads CSV exports into the master data store.
type Loader struct {
	repo repository.MasterDataRepository
	loc  *time.Location
}

// NewLoader returns a loader that reads zone-less sale times in loc.
func NewLoader(repo repository.MasterDataRepository, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{repo: repo, loc: loc}
}

// Result is the number of rows loaded from one file.
type Result struct {
	File string `json:"file"`
	Rows int    `json:"rows"`
}

type rowFunc func(ctx context.Context, r row) error

type fileFormat struct {
	name     string
	required []string
	load     rowFunc
}

func (l *Loader) masterFiles() []fileFormat {
	return []fileFormat{
		{StoresFile, []string{"code", "name"}, l.storeRow},
		{CategoriesFile, []string{"name"}, l.categoryRow},
		{ProductsFile, []string{"sku", "name", "category"}, l.productRow},
		{ShelvesFile, []string{"code", "store_code", "category", "capacity"}, l.shelfRow},
		{StaffFile, []string{"store_code", "name"}, l.staffRow},
		{ProductShelvesFile, []string{"sku", "shelf_code", "quantity"}, l.productShelfRow},
	}
}

// LoadMasterData loads every master data file found in dir. Missing files are skipped.
func (l *Loader) LoadMasterData(ctx context.Context, dir string) ([]Result, error) {
	var results []Result
	for _, format := range l.masterFiles() {
		path := filepath.Join(dir, format.name)
		n, err := l.loadFile(ctx, path, format)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("file", path).Msg("master data file not found, skipping")
			continue
		}
		if err != nil {
			return results, err
		}

		log.Info().Str("file", format.name).Int("rows", n).Msg("master data loaded")
		results = append(results, Result{File: format.name, Rows: n})
	}
	return results, nil
}

// LoadSalesFile loads a sales export from disk.
func (l *Loader) LoadSalesFile(ctx context.Context, path string) (int, error) {
	return l.loadFile(ctx, path, l.salesFormat())
}

// LoadSales loads a sales export with columns store_code, sku, quantity, sale_time.
func (l *Loader) LoadSales(ctx context.Context, r io.Reader) (int, error) {
	return l.load(ctx, r, l.salesFormat())
}

func (l *Loader) salesFormat() fileFormat {
	return fileFormat{SalesFile, []string{"store_code", "sku", "quantity", "sale_time"}, l.saleRow}
}

func (l *Loader) loadFile(ctx context.Context, path string, format fileFormat) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := l.load(ctx, f, format)
	if err != nil {
		return n, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return n, nil
}

func (l *Loader) load(ctx context.Context, r io.Reader, format fileFormat) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[normalizeColumn(col)] = i
	}
	for _, col := range format.required {
		if _, ok := colMap[col]; !ok {
			return 0, fmt.Errorf("%w: missing required column %s", domain.ErrInvalidInput, col)
		}
	}

	count := 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if isBlank(record) {
			continue
		}

		if err := format.load(ctx, row{record: record, cols: colMap}); err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	return count, nil
}

func (l *Loader) storeRow(ctx context.Context, r row) error {
	_, err := l.repo.UpsertStore(ctx, &domain.Store{Code: r.get("code"), Name: r.get("name")})
	return err
}

func (l *Loader) categoryRow(ctx context.Context, r row) error {
	_, err := l.repo.UpsertCategory(ctx, &domain.Category{Name: r.get("name")})
	return err
}

func (l *Loader) productRow(ctx context.Context, r row) error {
	categoryID, err := l.repo.CategoryIDByName(ctx, r.get("category"))
	if err != nil {
		return err
	}
	size, err := r.floatValue("package_size")
	if err != nil {
		return err
	}

	_, err = l.repo.UpsertProduct(ctx, &domain.Product{
		SKU:         r.get("sku"),
		Name:        r.get("name"),
		CategoryID:  categoryID,
		PackageSize: size,
		Unit:        r.get("unit"),
	})
	return err
}

func (l *Loader) shelfRow(ctx context.Context, r row) error {
	storeID, err := l.repo.StoreIDByCode(ctx, r.get("store_code"))
	if err != nil {
		return err
	}
	categoryID, err := l.repo.CategoryIDByName(ctx, r.get("category"))
	if err != nil {
		return err
	}
	capacity, err := r.intValue("capacity")
	if err != nil {
		return err
	}

	_, err = l.repo.UpsertShelf(ctx, &domain.Shelf{
		Code:       r.get("code"),
		StoreID:    storeID,
		CategoryID: categoryID,
		Capacity:   capacity,
		Location:   r.get("location"),
	})
	return err
}

func (l *Loader) staffRow(ctx context.Context, r row) error {
	storeID, err := l.repo.StoreIDByCode(ctx, r.get("store_code"))
	if err != nil {
		return err
	}

	_, err = l.repo.UpsertStaff(ctx, &domain.Staff{StoreID: storeID, Name: r.get("name"), Role: r.get("role")})
	return err
}

func (l *Loader) productShelfRow(ctx context.Context, r row) error {
	productID, err := l.repo.ProductIDBySKU(ctx, r.get("sku"))
	if err != nil {
		return err
	}
	shelfID, err := l.repo.ShelfIDByCode(ctx, r.get("shelf_code"))
	if err != nil {
		return err
	}
	quantity, err := r.intValue("quantity")
	if err != nil {
		return err
	}
	maxCapacity, err := r.intValue("max_capacity")
	if err != nil {
		return err
	}

	_, err = l.repo.UpsertProductShelf(ctx, &domain.ProductShelf{
		ProductID:   productID,
		ShelfID:     shelfID,
		Quantity:    quantity,
		MaxCapacity: maxCapacity,
	})
	return err
}

func (l *Loader) saleRow(ctx context.Context, r row) error {
	storeID, err := l.repo.StoreIDByCode(ctx, r.get("store_code"))
	if err != nil {
		return err
	}
	productID, err := l.repo.ProductIDBySKU(ctx, r.get("sku"))
	if err != nil {
		return err
	}
	quantity, err := r.intValue("quantity")
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: sale quantity must be positive, got %d", domain.ErrInvalidInput, quantity)
	}
	saleTime, err := l.parseSaleTime(r.get("sale_time"))
	if err != nil {
		return err
	}

	return l.repo.InsertSale(ctx, &domain.SalesHistory{
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  quantity,
		SaleTime:  saleTime,
	})
}

// parseSaleTime accepts RFC3339, or a local timestamp interpreted in the loader's zone.
func (l *Loader) parseSaleTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(l.loc), nil
	}
	for _, layout := range saleTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, l.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised sale_time %q", domain.ErrInvalidInput, value)
}

type row struct {
	record []string
	cols   map[string]int
}

func (r row) get(col string) string {
	if idx, ok := r.cols[col]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

// intValue reads a whole number. Empty cells read as zero and "12.0" style values are accepted.
func (r row) intValue(col string) (int, error) {
	val := r.get(col)
	if val == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: column %s is not a whole number: %q", domain.ErrInvalidInput, col, val)
	}
	return int(f), nil
}

func (r row) floatValue(col string) (float64, error) {
	val := r.get(col)
	if val == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %s is not a number: %q", domain.ErrInvalidInput, col, val)
	}
	return f, nil
}

func normalizeColumn(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
