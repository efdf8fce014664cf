package test_seeder

import (
	"context"
	"fmt"
	"time"
)

// InsertCategory inserts a category row for testing
func (ts TestSeeder) InsertCategory(ctx context.Context, id int, name string) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO categories (category_id, name) VALUES ($1, $2)`,
		id, name,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertCategory failed: %v", err))
	}
}

// InsertProduct inserts a product row for testing
func (ts TestSeeder) InsertProduct(ctx context.Context, id int, name string, price float64, categoryID int) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO products (product_id, name, price, category_id) VALUES ($1, $2, $3, $4)`,
		id, name, price, categoryID,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertProduct failed: %v", err))
	}
}

// InsertCustomer inserts a customer row for testing
func (ts TestSeeder) InsertCustomer(ctx context.Context, id int, name string, joinDate time.Time) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO customers (customer_id, name, join_date) VALUES ($1, $2, $3)`,
		id, name, joinDate,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertCustomer failed: %v", err))
	}
}

// InsertOrder inserts an order row for testing
func (ts TestSeeder) InsertOrder(ctx context.Context, id int, customerID int, orderDate time.Time) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO orders (order_id, customer_id, order_date) VALUES ($1, $2, $3)`,
		id, customerID, orderDate,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertOrder failed: %v", err))
	}
}

// InsertOrderItem inserts an order item row for testing
func (ts TestSeeder) InsertOrderItem(ctx context.Context, orderID int, productID int, quantity int) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`,
		orderID, productID, quantity,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertOrderItem failed: %v", err))
	}
}

// InsertEvent inserts a navigation event row for testing
func (ts TestSeeder) InsertEvent(ctx context.Context, customerID int, productID int, eventType string, occurredAt time.Time) {
	_, err := ts.pool.Exec(ctx,
		`INSERT INTO events (customer_id, product_id, event_type, occurred_at) VALUES ($1, $2, $3, $4)`,
		customerID, productID, eventType, occurredAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertEvent failed: %v", err))
	}
}
