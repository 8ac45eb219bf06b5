package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func masterFixture() map[string]string {
	return map[string]string{
		StoresFile:     "code,name\nBLR-01,Indiranagar\nBLR-02,Koramangala\n",
		CategoriesFile: "Name\nDairy\nBakery\n",
		ProductsFile:   "sku,name,category,package_size,unit\nMILK-1L,Milk 1L,Dairy,1,l\nBREAD-400,Bread,Bakery,400,g\n",
		ShelvesFile:    "code,store_code,category,capacity,location\nD1,BLR-01,Dairy,50,Aisle 1\nB1,BLR-01,Bakery,120.0,Aisle 2\n",
		StaffFile:      "store_code,name,role\nBLR-01,Asha,stocker\n\nBLR-01,Ravi,stocker\n",
		ProductShelvesFile: "sku,shelf_code,quantity,max_capacity\n" +
			"MILK-1L,D1,20,50\nBREAD-400,B1,100,120\n",
	}
}

func TestLoadMasterData(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	dir := writeFiles(t, masterFixture())

	results, err := NewLoader(repo, ist).LoadMasterData(ctx, dir)
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.Equal(t, Result{File: StaffFile, Rows: 2}, results[4], "blank lines are skipped")

	milkID, err := repo.ProductIDBySKU(ctx, "MILK-1L")
	require.NoError(t, err)
	shelfID, err := repo.ShelfIDByCode(ctx, "D1")
	require.NoError(t, err)

	ps, err := repo.GetProductShelf(ctx, milkID, shelfID)
	require.NoError(t, err)
	require.NotNil(t, ps)
	assert.Equal(t, 20, ps.Quantity)
	assert.Equal(t, 50, ps.MaxCapacity)

	staff, err := repo.ListStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	// reloading is idempotent
	_, err = NewLoader(repo, ist).LoadMasterData(ctx, dir)
	require.NoError(t, err)
	staff, err = repo.ListStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, 2)
}

func TestLoadMasterData_SkipsMissingFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{StoresFile: "code,name\nX,Store X\n"})

	results, err := NewLoader(memory.New(), ist).LoadMasterData(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []Result{{File: StoresFile, Rows: 1}}, results)
}

func TestLoadMasterData_UnknownReference(t *testing.T) {
	files := masterFixture()
	files[ShelvesFile] = "code,store_code,category,capacity\nD1,NOPE,Dairy,50\n"
	dir := writeFiles(t, files)

	_, err := NewLoader(memory.New(), ist).LoadMasterData(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "shelves.csv: line 2")
}

func TestLoadMasterData_MissingColumn(t *testing.T) {
	dir := writeFiles(t, map[string]string{StoresFile: "code\nX\n"})

	_, err := NewLoader(memory.New(), ist).LoadMasterData(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadSales(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	dir := writeFiles(t, masterFixture())
	loader := NewLoader(repo, ist)
	_, err := loader.LoadMasterData(ctx, dir)
	require.NoError(t, err)

	csv := "store_code,sku,quantity,sale_time\n" +
		"BLR-01,MILK-1L,3,2024-05-09 18:30:00\n" +
		"BLR-01,MILK-1L,2,2024-05-09T13:00:00Z\n" +
		"BLR-01,BREAD-400,4,2024-05-08\n"

	n, err := loader.LoadSales(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	storeID, err := repo.StoreIDByCode(ctx, "BLR-01")
	require.NoError(t, err)
	milkID, err := repo.ProductIDBySKU(ctx, "MILK-1L")
	require.NoError(t, err)

	sales, err := repo.ListSales(ctx, nil)
	require.NoError(t, err)
	require.Len(t, sales, 3)

	var milk []domain.SalesHistory
	for _, s := range sales {
		assert.Equal(t, storeID, s.StoreID)
		if s.ProductID == milkID {
			milk = append(milk, s)
		}
	}
	require.Len(t, milk, 2)
	for _, s := range milk {
		assert.True(t, s.SaleTime.Equal(time.Date(2024, 5, 9, 18, 30, 0, 0, ist)))
	}
}

func TestLoadSales_RejectsBadRows(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	_, err := NewLoader(repo, ist).LoadMasterData(ctx, writeFiles(t, masterFixture()))
	require.NoError(t, err)

	tests := map[string]string{
		"zero quantity": "BLR-01,MILK-1L,0,2024-05-09",
		"bad time":      "BLR-01,MILK-1L,1,yesterday",
		"fraction":      "BLR-01,MILK-1L,1.5,2024-05-09",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader(repo, ist).LoadSales(ctx, strings.NewReader("store_code,sku,quantity,sale_time\n"+line+"\n"))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "store_code", normalizeColumn("\ufeffStore Code "))
	assert.Equal(t, "sku", normalizeColumn("SKU"))
}
