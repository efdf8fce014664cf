//go:build datagen_postgres
// +build datagen_postgres

package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"graphmigrate/src/helper/env"
	"graphmigrate/src/infra/postgres"
)

// Semeia as tabelas relacionais do plano catalog: categories, products,
// customers, orders, order_items e events.
//
// Uso: go run -tags datagen_postgres datagen_postgres.go -customers 1000 -orders 5000

var categoryNames = []string{
	"Electronics", "Books", "Home & Kitchen", "Sports", "Toys",
	"Clothing", "Beauty", "Garden", "Automotive", "Grocery",
}

var eventTypes = []string{"view", "view", "view", "cart", "purchase", "wishlist"}

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	numProducts := flag.Int("products", 500, "Quantidade de produtos.")
	numCustomers := flag.Int("customers", 1000, "Quantidade de clientes.")
	numOrders := flag.Int("orders", 5000, "Quantidade de pedidos.")
	numEvents := flag.Int("events", 20000, "Quantidade de eventos de navegação.")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed do gerador.")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	gofakeit.Seed(*seed)

	pool, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	createTables(ctx, pool)
	seedCategories(ctx, pool)
	seedProducts(ctx, pool, rng, *numProducts)
	seedCustomers(ctx, pool, *numCustomers)
	seedOrders(ctx, pool, rng, *numOrders, *numCustomers, *numProducts)
	seedEvents(ctx, pool, rng, *numEvents, *numCustomers, *numProducts)

	log.Println("Done.")
}

func createTables(ctx context.Context, pool *pgxpool.Pool) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			category_id INT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id INT PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			category_id INT NOT NULL REFERENCES categories (category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			customer_id INT PRIMARY KEY,
			name TEXT NOT NULL,
			join_date DATE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id INT PRIMARY KEY,
			customer_id INT NOT NULL REFERENCES customers (customer_id),
			order_date TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id INT NOT NULL REFERENCES orders (order_id),
			product_id INT NOT NULL REFERENCES products (product_id),
			quantity INT NOT NULL,
			PRIMARY KEY (order_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			customer_id INT NOT NULL,
			product_id INT NOT NULL,
			event_type TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		)`,
	}

	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			log.Fatalf("Failed to create table: %v", err)
		}
	}
}

func copyInto(ctx context.Context, pool *pgxpool.Pool, table string, columns []string, rows [][]any) {
	copied, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		log.Fatalf("Failed to copy into %s: %v", table, err)
	}
	log.Printf("Copied %d rows into %s", copied, table)
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) {
	rows := make([][]any, 0, len(categoryNames))
	for i, name := range categoryNames {
		rows = append(rows, []any{i + 1, name})
	}
	copyInto(ctx, pool, "categories", []string{"category_id", "name"}, rows)
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) {
	rows := make([][]any, 0, n)
	for id := 1; id <= n; id++ {
		rows = append(rows, []any{
			id,
			gofakeit.ProductName(),
			gofakeit.Price(1, 2000),
			rng.Intn(len(categoryNames)) + 1,
		})
	}
	copyInto(ctx, pool, "products", []string{"product_id", "name", "price", "category_id"}, rows)
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, n int) {
	rows := make([][]any, 0, n)
	for id := 1; id <= n; id++ {
		rows = append(rows, []any{
			id,
			faker.Name(),
			gofakeit.DateRange(
				time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			),
		})
	}
	copyInto(ctx, pool, "customers", []string{"customer_id", "name", "join_date"}, rows)
}

func seedOrders(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int, numCustomers int, numProducts int) {
	orders := make([][]any, 0, n)
	items := make([][]any, 0, n*2)

	for id := 1; id <= n; id++ {
		orders = append(orders, []any{
			id,
			rng.Intn(numCustomers) + 1,
			gofakeit.DateRange(
				time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			),
		})

		// 1 a 4 itens por pedido, produtos distintos.
		seen := map[int]bool{}
		for i := 0; i < rng.Intn(4)+1; i++ {
			productID := rng.Intn(numProducts) + 1
			if seen[productID] {
				continue
			}
			seen[productID] = true
			items = append(items, []any{id, productID, rng.Intn(5) + 1})
		}
	}

	copyInto(ctx, pool, "orders", []string{"order_id", "customer_id", "order_date"}, orders)
	copyInto(ctx, pool, "order_items", []string{"order_id", "product_id", "quantity"}, items)
}

func seedEvents(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int, numCustomers int, numProducts int) {
	rows := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, []any{
			rng.Intn(numCustomers) + 1,
			rng.Intn(numProducts) + 1,
			eventTypes[rng.Intn(len(eventTypes))],
			gofakeit.DateRange(
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			),
		})
	}
	copyInto(ctx, pool, "events", []string{"customer_id", "product_id", "event_type", "occurred_at"}, rows)
}
