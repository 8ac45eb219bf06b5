package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/drive"
	"github.com/andresuchdata/shelfstock/backend-go/internal/ingest"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/shelfstock/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type ctxKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (defaults to DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing master data CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"DB_SEED_DIR"},
	}
}

func salesFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sales-file",
			Usage: "Local sales CSV to load",
		},
		&cli.StringFlag{
			Name:    "drive-folder",
			Usage:   "Google Drive folder id holding sales exports (CSV or XLSX)",
			EnvVars: []string{"SALES_DRIVE_FOLDER_ID"},
		},
		&cli.StringFlag{
			Name:  "drive-folder-path",
			Usage: "Google Drive folder path, resolved from the drive root",
		},
		&cli.StringFlag{
			Name:  "drive-file",
			Usage: "Single Google Drive CSV file id, streamed without a local copy",
		},
		&cli.StringFlag{
			Name:    "drive-credentials",
			Usage:   "Service account JSON or a path to it",
			EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"},
		},
		&cli.StringFlag{
			Name:  "download-dir",
			Usage: "Where Drive exports are stored before loading",
			Value: "./data/downloads/sales",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Only load Drive files whose name starts with this prefix",
			Value: "sales",
		},
	}
}

func initDB(c *cli.Context) error {
	dsn := c.String("db-url")
	if dsn == "" {
		dsn = config.Load().Database.DSN()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, ctxKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(ctxKey{}).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *sql.DB {
	return c.Context.Value(ctxKey{}).(*sql.DB)
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and load master data and sales history",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:   "master",
				Usage:  "Load stores, categories, products, shelves, staff and shelf stock",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMaster,
			},
			{
				Name:   "sales",
				Usage:  "Load sales history from a local CSV or Google Drive",
				Flags:  append([]cli.Flag{newDBURLFlag()}, salesFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: runSales,
			},
			{
				Name:   "all",
				Usage:  "Migrate, then load master data and sales history",
				Flags:  append([]cli.Flag{newDBURLFlag(), newDataDirFlag()}, salesFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := runMigrate(c); err != nil {
						return fmt.Errorf("error running migration: %w", err)
					}
					if err := runMaster(c); err != nil {
						return fmt.Errorf("error running master seed: %w", err)
					}
					if !c.IsSet("sales-file") {
						if err := c.Set("sales-file", filepath.Join(c.String("data-dir"), ingest.SalesFile)); err != nil {
							return err
						}
					}
					if err := runSales(c); err != nil {
						return fmt.Errorf("error running sales seed: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func runMigrate(c *cli.Context) error {
	if _, err := dbFrom(c).ExecContext(c.Context, postgres.Schema()); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Msg("schema applied")
	return nil
}

func newLoader(c *cli.Context) (*ingest.Loader, error) {
	clk, err := clock.New(config.Load().Replenishment.TimeZone)
	if err != nil {
		return nil, err
	}
	var repo repository.MasterDataRepository = repository.NewIngestRepository(dbFrom(c))
	return ingest.NewLoader(repo, clk.Location()), nil
}

func runMaster(c *cli.Context) error {
	loader, err := newLoader(c)
	if err != nil {
		return err
	}

	results, err := loader.LoadMasterData(c.Context, c.String("data-dir"))
	if err != nil {
		return fmt.Errorf("failed to seed master data: %w", err)
	}

	total := 0
	for _, r := range results {
		total += r.Rows
	}
	log.Info().Int("files", len(results)).Int("rows", total).Msg("master data seeding completed")
	return nil
}

func runSales(c *cli.Context) error {
	loader, err := newLoader(c)
	if err != nil {
		return err
	}
	ctx := c.Context

	if c.String("drive-file") == "" && c.String("drive-folder") == "" && c.String("drive-folder-path") == "" {
		path := c.String("sales-file")
		if path == "" {
			return fmt.Errorf("one of --sales-file, --drive-file, --drive-folder or --drive-folder-path is required")
		}
		if _, err := os.Stat(path); err != nil {
			log.Warn().Str("file", path).Msg("sales file not found, skipping")
			return nil
		}
		n, err := loader.LoadSalesFile(ctx, path)
		if err != nil {
			return err
		}
		log.Info().Str("file", path).Int("rows", n).Msg("sales loaded")
		return nil
	}

	driveService, err := drive.NewService(ctx, c.String("drive-credentials"))
	if err != nil {
		return err
	}

	if fileID := c.String("drive-file"); fileID != "" {
		_, err := drive.NewIngestService(driveService, loader).IngestFile(ctx, fileID)
		return err
	}

	folderID := c.String("drive-folder")
	if folderPath := c.String("drive-folder-path"); folderPath != "" {
		if folderID, err = driveService.FindFolderByPath(ctx, folderPath); err != nil {
			return err
		}
	}

	paths, err := drive.NewDownloader(driveService).DownloadFolderCSV(ctx, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: c.String("download-dir"),
		NamePrefix:  c.String("prefix"),
	})
	if err != nil {
		return fmt.Errorf("failed to download sales exports: %w", err)
	}

	total := 0
	for _, path := range paths {
		n, err := loader.LoadSalesFile(ctx, path)
		if err != nil {
			return err
		}
		total += n
		log.Info().Str("file", filepath.Base(path)).Int("rows", n).Msg("sales loaded")
	}
	log.Info().Int("files", len(paths)).Int("rows", total).Msg("drive sales import completed")
	return nil
}
