package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
	// NamePrefix keeps only files whose name starts with it, case-insensitively.
	NamePrefix string
}

// Downloader pulls sales exports out of a Drive folder.
type Downloader struct {
	source FileSource
}

func NewDownloader(source FileSource) *Downloader {
	return &Downloader{source: source}
}

// DownloadFolderCSV downloads the CSV and XLSX files of a folder into DownloadDir and
// returns the local CSV paths in listing order. XLSX files are converted to CSV from
// their first sheet and the downloaded workbook is removed.
func (d *Downloader) DownloadFolderCSV(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	prefix := strings.ToLower(opts.NamePrefix)
	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(f.Name)
		if prefix != "" && !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}

		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			localPath := filepath.Join(opts.DownloadDir, name)
			if err := d.downloadTo(ctx, f, localPath); err != nil {
				return nil, err
			}
			localPaths = append(localPaths, localPath)

		case ".xlsx":
			xlsxPath := filepath.Join(opts.DownloadDir, name)
			if err := d.downloadTo(ctx, f, xlsxPath); err != nil {
				return nil, err
			}

			csvPath := strings.TrimSuffix(xlsxPath, filepath.Ext(xlsxPath)) + ".csv"
			if err := convertXLSXToCSV(xlsxPath, csvPath); err != nil {
				return nil, fmt.Errorf("failed to convert %s to csv: %w", name, err)
			}
			if err := os.Remove(xlsxPath); err != nil {
				log.Warn().Err(err).Str("file", xlsxPath).Msg("failed to remove downloaded workbook")
			}
			localPaths = append(localPaths, csvPath)

		default:
			log.Debug().Str("file", name).Msg("skipping non tabular drive file")
		}
	}

	return localPaths, nil
}

func (d *Downloader) downloadTo(ctx context.Context, f *File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", path, err)
	}

	if err := d.source.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return out.Close()
}
