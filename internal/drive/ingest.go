package drive

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// SalesLoader consumes a sales CSV stream and reports the number of rows stored.
type SalesLoader interface {
	LoadSales(ctx context.Context, r io.Reader) (int, error)
}

// IngestService streams sales CSVs straight from Drive into the loader.
type IngestService struct {
	source FileSource
	loader SalesLoader
}

func NewIngestService(source FileSource, loader SalesLoader) *IngestService {
	return &IngestService{source: source, loader: loader}
}

// IngestFile loads one Drive CSV without touching local disk.
func (s *IngestService) IngestFile(ctx context.Context, fileID string) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(s.source.DownloadFile(ctx, fileID, pw))
	}()

	n, err := s.loader.LoadSales(ctx, pr)
	// unblock the downloader if the loader stopped early
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return n, fmt.Errorf("ingest drive file %s: %w", fileID, err)
	}

	log.Info().Str("file_id", fileID).Int("rows", n).Msg("drive sales file ingested")
	return n, nil
}
