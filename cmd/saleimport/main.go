package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/saleimport"
	"storefront/internal/service"
)

// fileList collects repeated -file flags.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var files fileList
	flag.Var(&files, "file", "gzipped CSV sale file to import (repeatable)")
	concurrency := flag.Int("concurrency", 4, "number of files loaded in parallel")
	flag.Parse()

	if len(files) == 0 {
		flag.Usage()
		return errors.New("at least one -file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	saleRepo := repository.NewSaleRepository(pool, logger)
	projector := service.NewPriceProjector(productRepo, saleRepo, logger)
	saleService := service.NewSaleService(saleRepo, productRepo, projector, logger)

	// S3 with local fallback, or local only
	loader := saleimport.NewFileLoader(logger)
	if cfg.S3.Enabled {
		s3Loader, err := saleimport.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
		loader = saleimport.NewFallbackLoader(s3Loader, loader, cfg.S3.Prefix, err == nil, logger)
	}

	importer := saleimport.NewImporter(loader, saleService, *concurrency, logger)
	report, err := importer.Import(ctx, files)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d rows from %d files\n", report.Created, report.Rows, report.Files)
	for _, failed := range report.Failed {
		fmt.Fprintf(os.Stderr, "  rejected %s\n", failed.Error())
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d rows rejected", len(report.Failed))
	}

	return nil
}
