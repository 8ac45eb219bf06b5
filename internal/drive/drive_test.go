package drive

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeSource struct {
	files    []*File
	contents map[string][]byte
}

func (f *fakeSource) ListFiles(context.Context, string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeSource) DownloadFile(_ context.Context, fileID string, w io.Writer) error {
	body, ok := f.contents[fileID]
	if !ok {
		return fmt.Errorf("file %s not found", fileID)
	}
	_, err := w.Write(body)
	return err
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestDownloadFolderCSV(t *testing.T) {
	src := &fakeSource{
		files: []*File{
			{ID: "1", Name: "sales-2024-05-08.csv"},
			{ID: "2", Name: "Sales-2024-05-09.xlsx"},
			{ID: "3", Name: "notes.txt"},
			{ID: "4", Name: "stores.csv"},
		},
		contents: map[string][]byte{
			"1": []byte("store_code,sku,quantity,sale_time\nBLR-01,MILK-1L,2,2024-05-08\n"),
			"2": workbook(t, [][]any{
				{"store_code", "sku", "quantity", "sale_time"},
				{"BLR-01", "BREAD-400", 3, "2024-05-09"},
				{},
				{"BLR-01", "MILK-1L"},
			}),
		},
	}

	dir := t.TempDir()
	paths, err := NewDownloader(src).DownloadFolderCSV(context.Background(), DownloadOptions{
		FolderID:    "folder",
		DownloadDir: dir,
		NamePrefix:  "sales",
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "sales-2024-05-08.csv"),
		filepath.Join(dir, "Sales-2024-05-09.csv"),
	}, paths)

	_, err = os.Stat(filepath.Join(dir, "Sales-2024-05-09.xlsx"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "workbook is removed after conversion")

	records := readCSV(t, paths[1])
	assert.Equal(t, [][]string{
		{"store_code", "sku", "quantity", "sale_time"},
		{"BLR-01", "BREAD-400", "3", "2024-05-09"},
		{"BLR-01", "MILK-1L", "", ""},
	}, records)
}

func TestDownloadFolderCSV_RequiresDir(t *testing.T) {
	_, err := NewDownloader(&fakeSource{}).DownloadFolderCSV(context.Background(), DownloadOptions{})
	assert.Error(t, err)
}

type recordingLoader struct {
	body []byte
	err  error
}

func (r *recordingLoader) LoadSales(_ context.Context, rd io.Reader) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := io.ReadAll(rd)
	r.body = b
	return bytes.Count(b, []byte("\n")) - 1, err
}

func TestIngestFile_StreamsDriveContent(t *testing.T) {
	content := "store_code,sku,quantity,sale_time\nA,B,1,2024-05-08\nA,B,2,2024-05-09\n"
	src := &fakeSource{contents: map[string][]byte{"f1": []byte(content)}}
	loader := &recordingLoader{}

	n, err := NewIngestService(src, loader).IngestFile(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, content, string(loader.body))
}

func TestIngestFile_DownloadError(t *testing.T) {
	_, err := NewIngestService(&fakeSource{}, &recordingLoader{}).IngestFile(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestIngestFile_LoaderErrorDoesNotHang(t *testing.T) {
	big := bytes.Repeat([]byte("x"), 1<<20)
	src := &fakeSource{contents: map[string][]byte{"f1": big}}

	_, err := NewIngestService(src, &recordingLoader{err: errors.New("bad header")}).IngestFile(context.Background(), "f1")
	assert.ErrorContains(t, err, "bad header")
}
