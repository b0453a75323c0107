package saleimport

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RowError records a row the sale service rejected.
type RowError struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Err  error  `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

// Report summarises an import run.
type Report struct {
	Files   int        `json:"files"`
	Rows    int        `json:"rows"`
	Created int        `json:"created"`
	Failed  []RowError `json:"-"`
}

// Importer loads sale files concurrently and applies their rows in file order.
type Importer struct {
	loader      Loader
	sales       SaleCreator
	concurrency int
	logger      zerolog.Logger
}

// NewImporter creates an importer. concurrency bounds parallel file loads.
func NewImporter(loader Loader, sales SaleCreator, concurrency int, logger zerolog.Logger) *Importer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Importer{
		loader:      loader,
		sales:       sales,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "sale-importer").Logger(),
	}
}

// Import loads every path before writing anything, so a missing or malformed
// file aborts the run with no sales created. Rows rejected with a domain error
// are collected in the report; any other error stops the import.
func (i *Importer) Import(ctx context.Context, paths []string) (*Report, error) {
	batches := make([][]Row, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for idx, path := range paths {
		idx, path := idx, path
		g.Go(func() error {
			rows, err := i.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			batches[idx] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Files: len(paths)}
	for idx, rows := range batches {
		for _, row := range rows {
			report.Rows++

			req := row.Request
			sale, err := i.sales.Create(ctx, &req)
			if err != nil {
				var domainErr *model.DomainError
				if !errors.As(err, &domainErr) {
					return report, fmt.Errorf("failed to import %s line %d: %w", paths[idx], row.Line, err)
				}
				i.logger.Warn().
					Err(err).
					Str("file", paths[idx]).
					Int("line", row.Line).
					Msg("sale row rejected")
				report.Failed = append(report.Failed, RowError{File: paths[idx], Line: row.Line, Err: err})
				continue
			}

			report.Created++
			i.logger.Debug().
				Int64("sale_id", sale.ID).
				Int64("product_id", sale.ProductID).
				Msg("sale imported")
		}
	}

	i.logger.Info().
		Int("files", report.Files).
		Int("rows", report.Rows).
		Int("created", report.Created).
		Int("failed", len(report.Failed)).
		Msg("sale import finished")

	return report, nil
}
