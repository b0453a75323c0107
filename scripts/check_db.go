//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5"
)

// check_db verifies the configured database is reachable and reports which
// storefront tables exist.
//
//	DB_PASSWORD=postgres go run scripts/check_db.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	fmt.Println("\nStorefront tables:")
	for _, table := range []string{"products", "product_sales", "orders", "order_details", "payment_methods", "payments"} {
		var exists bool
		err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup of %s failed: %v\n", table, err)
			os.Exit(1)
		}

		status := "missing"
		if exists {
			var count int64
			if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&count); err != nil {
				fmt.Fprintf(os.Stderr, "Count of %s failed: %v\n", table, err)
				os.Exit(1)
			}
			status = fmt.Sprintf("%d rows", count)
		}
		fmt.Printf("  - %-16s %s\n", table, status)
	}
}
