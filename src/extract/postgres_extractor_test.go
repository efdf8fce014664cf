package extract_test

import (
	"context"
	"errors"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jackc/pgx/v5/pgxpool"

	"graphmigrate/src/domain"
	"graphmigrate/src/extract"
	"graphmigrate/src/helper/env"
	"graphmigrate/src/infra/postgres"
	"graphmigrate/src/test_artefacts/test_seeder"
)

// Teste de integração: precisa de um postgres com as tabelas do plano
// catalog. Roda apenas quando TEST_DB_HOST está definido.
var _ = Describe("PostgresExtractor", func() {
	var (
		pool      *pgxpool.Pool
		extractor *extract.PostgresExtractor
		seeder    test_seeder.TestSeeder
		ctx       context.Context
	)

	BeforeEach(func() {
		if os.Getenv("TEST_DB_HOST") == "" {
			Skip("TEST_DB_HOST not set")
		}

		ctx = context.Background()

		dbHost := env.MustGetString("TEST_DB_HOST")
		dbPort := env.GetString("TEST_DB_PORT", "5432")
		dbname := env.MustGetString("TEST_DB_NAME")
		dbUser := env.MustGetString("TEST_DB_USER")
		dbPassword := env.MustGetString("TEST_DB_PASSWORD")

		var err error
		pool, err = postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, 5)
		Expect(err).NotTo(HaveOccurred())

		extractor = extract.NewPostgresExtractor(pool)
		seeder = test_seeder.New(pool)
		seeder.TruncateTables(ctx)
	})

	AfterEach(func() {
		if pool != nil {
			pool.Close()
		}
	})

	Context("when the table has rows", func() {
		It("materializes the full snapshot with driver-typed values", func() {
			// ARRANGE
			seeder.InsertCategory(ctx, 1, "Books")
			seeder.InsertProduct(ctx, 10, "Dune", 42.50, 1)
			seeder.InsertProduct(ctx, 11, "Neuromancer", 31.90, 1)

			// ACT
			records, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceTable, Name: "products"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(records.Columns).To(ConsistOf("product_id", "name", "price", "category_id"))
			Expect(records.Rows).To(HaveLen(2))
			Expect(records.HasColumn("price")).To(BeTrue())
		})

		It("keeps timestamp columns as time.Time", func() {
			// ARRANGE
			orderDate := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
			seeder.InsertCustomer(ctx, 1, "Alice", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
			seeder.InsertOrder(ctx, 100, 1, orderDate)

			// ACT
			records, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceTable, Name: "orders"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(records.Rows).To(HaveLen(1))
			Expect(records.Rows[0]["order_date"]).To(BeAssignableToTypeOf(time.Time{}))
		})

		It("reads join and event tables used by relationship sources", func() {
			// ARRANGE
			occurredAt := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
			seeder.InsertCategory(ctx, 1, "Books")
			seeder.InsertProduct(ctx, 10, "Dune", 42.50, 1)
			seeder.InsertCustomer(ctx, 1, "Alice", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
			seeder.InsertOrder(ctx, 100, 1, occurredAt)
			seeder.InsertOrderItem(ctx, 100, 10, 3)
			seeder.InsertEvent(ctx, 1, 10, "view", occurredAt)

			// ACT
			items, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceTable, Name: "order_items"})
			Expect(err).NotTo(HaveOccurred())
			events, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceTable, Name: "events"})
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(items.Rows).To(HaveLen(1))
			Expect(items.Rows[0]["quantity"]).To(BeEquivalentTo(3))
			Expect(events.Rows).To(HaveLen(1))
			Expect(events.Rows[0]["event_type"]).To(Equal("view"))
		})
	})

	Context("when the table is empty", func() {
		It("returns the columns with no rows", func() {
			records, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceTable, Name: "categories"})

			Expect(err).NotTo(HaveOccurred())
			Expect(records.Columns).NotTo(BeEmpty())
			Expect(records.Rows).To(BeEmpty())
		})
	})

})

var _ = Describe("PostgresExtractor identifier barrier", func() {
	It("refuses to build a query for an unsafe table name", func() {
		extractor := extract.NewPostgresExtractor(nil)

		_, err := extractor.Extract(context.Background(), domain.Source{Kind: domain.SourceTable, Name: "products; DROP TABLE products"})

		Expect(errors.Is(err, domain.ErrInvalidPlan)).To(BeTrue())
	})
})
