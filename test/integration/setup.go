package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.Connect(ctx, connStr, config.DatabaseConfig{MaxConnections: 20, MinConnections: 2}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// App bundles the wired services and HTTP handler under test.
type App struct {
	Handler http.Handler
	Sales   service.SaleService
	Orders  service.OrderService
}

// NewApp wires repositories, services and the router against testDB.
func NewApp(testDB *TestDB) *App {
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	saleRepo := repository.NewSaleRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	paymentRepo := repository.NewPaymentRepository(testDB.Pool, logger)

	projector := service.NewPriceProjector(productRepo, saleRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	saleService := service.NewSaleService(saleRepo, productRepo, projector, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, paymentRepo, "cod", logger)

	h := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(testDB.Pool, logger),
		Product: handler.NewProductHandler(productService, saleService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Sale:    handler.NewSaleHandler(saleService, logger),
	}, testAPIKey, 10*time.Second, logger)

	return &App{Handler: h, Sales: saleService, Orders: orderService}
}

// Caller identifies the principal a request is made as.
type Caller struct {
	UserID int64
	Role   string
}

var (
	superAdmin = &Caller{UserID: 1, Role: "super_admin"}
	admin      = &Caller{UserID: 2, Role: "admin"}
)

func customer(id int64) *Caller { return &Caller{UserID: id, Role: "customer"} }

// Do sends a request through the router and returns the recorded response.
func (a *App) Do(t *testing.T, method, path string, body interface{}, as *Caller) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	if as != nil {
		req.Header.Set("X-User-ID", fmt.Sprint(as.UserID))
		req.Header.Set("X-User-Role", as.Role)
	}

	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	return w
}

// SeedProduct inserts a product whose effective price equals its base price.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, basePrice string) int64 {
	t.Helper()

	price := decimal.RequireFromString(basePrice)
	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO products (product_name, base_price, price, stock) VALUES ($1, $2, $2, 10) RETURNING id",
		name, price,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return id
}

// CleanupDB removes all data except the seeded payment methods.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE payments, order_details, orders, product_sales, products RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// countRows returns the number of rows in table.
func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
