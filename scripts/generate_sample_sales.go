//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// generateSampleSales writes a gzipped CSV of sale overrides for the sale
// import command. Product 1 gets two overlapping active sales (80 and 90)
// and product 2 a scheduled one starting tomorrow.
//
//	go run scripts/generate_sample_sales.go
//	go run ./cmd/saleimport -file data/sales/sample_sales.csv.gz
func main() {
	dataDir := "data/sales"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Hour)
	day := 24 * time.Hour
	ts := func(t time.Time) string { return t.Format(time.RFC3339) }

	rows := [][]string{
		{"product_id", "sale_price", "original_price", "discount_pct", "start_date", "end_date", "status"},
		{"1", "80.00", "100.00", "20", ts(now.Add(-day)), ts(now.Add(7 * day)), "active"},
		{"1", "90.00", "100.00", "10", ts(now.Add(-day)), ts(now.Add(3 * day)), "active"},
		{"2", "45.00", "", "", ts(now.Add(day)), ts(now.Add(2 * day)), ""},
	}

	filePath := filepath.Join(dataDir, "sample_sales.csv.gz")
	if err := createSaleFile(filePath, rows); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d sales\n", filePath, len(rows)-1)
}

func createSaleFile(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	writer := csv.NewWriter(gzipWriter)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}
