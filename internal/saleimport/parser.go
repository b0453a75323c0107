package saleimport

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Parse decompresses r and parses every CSV record into a Row.
// The whole file is rejected on the first malformed record.
func Parse(ctx context.Context, r io.Reader) ([]Row, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	reader.FieldsPerRecord = len(Columns)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	rows := make([]Row, 0, 64)
	for n := 0; ; n++ {
		if n%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, parseErr.Line, parseErr.Err)
			}
			return nil, fmt.Errorf("failed to read sale file: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if n == 0 && isHeader(record) {
			continue
		}

		req, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		rows = append(rows, Row{Line: line, Request: req})
	}

	return rows, nil
}

func isHeader(record []string) bool {
	return strings.EqualFold(strings.TrimSpace(record[0]), Columns[0])
}

func parseRecord(record []string) (model.CreateSaleRequest, error) {
	var req model.CreateSaleRequest
	field := func(i int) string { return strings.TrimSpace(record[i]) }

	productID, err := strconv.ParseInt(field(0), 10, 64)
	if err != nil {
		return req, fmt.Errorf("invalid product_id %q", field(0))
	}
	req.ProductID = productID

	price, err := decimal.NewFromString(field(1))
	if err != nil {
		return req, fmt.Errorf("invalid sale_price %q", field(1))
	}
	req.SalePrice = decimal.NewNullDecimal(price)

	if v := field(2); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return req, fmt.Errorf("invalid original_price %q", v)
		}
		req.OriginalPrice = decimal.NewNullDecimal(d)
	}

	if v := field(3); v != "" {
		pct, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid discount_pct %q", v)
		}
		req.DiscountPct = &pct
	}

	if req.StartDate, err = time.Parse(time.RFC3339, field(4)); err != nil {
		return req, fmt.Errorf("invalid start_date %q", field(4))
	}
	if req.EndDate, err = time.Parse(time.RFC3339, field(5)); err != nil {
		return req, fmt.Errorf("invalid end_date %q", field(5))
	}

	if v := field(6); v != "" {
		status := model.SaleStatus(strings.ToLower(v))
		if !status.Valid() {
			return req, fmt.Errorf("invalid status %q", v)
		}
		req.Status = &status
	}

	return req, nil
}
