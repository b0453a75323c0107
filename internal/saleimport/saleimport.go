// Package saleimport loads sale overrides in bulk from gzipped CSV files
// and applies them through the sale service so every row is projected.
package saleimport

import (
	"context"
	"errors"

	"storefront/internal/model"
)

// ErrMalformedRow is returned when a CSV record cannot be parsed into a sale.
var ErrMalformedRow = errors.New("malformed sale row")

// Columns is the expected CSV column order. A first record matching it is
// treated as a header and skipped.
var Columns = []string{
	"product_id",
	"sale_price",
	"original_price",
	"discount_pct",
	"start_date",
	"end_date",
	"status",
}

// Row is one parsed record together with its line in the source file.
type Row struct {
	Line    int
	Request model.CreateSaleRequest
}

// Loader reads a sale file and returns its parsed rows.
type Loader interface {
	Load(ctx context.Context, path string) ([]Row, error)
}

// SaleCreator creates a single sale override.
type SaleCreator interface {
	Create(ctx context.Context, req *model.CreateSaleRequest) (*model.ProductSale, error)
}
