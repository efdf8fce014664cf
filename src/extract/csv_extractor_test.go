package extract_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphmigrate/src/domain"
	"graphmigrate/src/extract"
)

var _ = Describe("CSVExtractor", func() {
	var (
		extractor *extract.CSVExtractor
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		extractor = extract.NewCSVExtractor("testdata")
	})

	Context("when the file is well formed", func() {
		It("materializes the full snapshot keyed by header", func() {
			// ACT
			records, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceCSV, Name: "users.csv"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(records.Columns).To(Equal([]string{"id", "username", "created_at"}))
			Expect(records.Rows).To(HaveLen(3))
			Expect(records.Rows[0]["id"]).To(Equal("1"))
			Expect(records.Rows[0]["username"]).To(Equal("alice"))
			Expect(records.Rows[2]["created_at"]).To(Equal("2024-03-01T12:00:00"))
		})

		It("keeps every value as a string", func() {
			records, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceCSV, Name: "users.csv"})

			Expect(err).NotTo(HaveOccurred())
			for _, row := range records.Rows {
				for column, value := range row {
					Expect(value).To(BeAssignableToTypeOf(""), column)
				}
			}
		})
	})

	Context("when the file only has a header", func() {
		It("returns the columns with no rows", func() {
			records, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceCSV, Name: "header_only.csv"})

			Expect(err).NotTo(HaveOccurred())
			Expect(records.Columns).To(Equal([]string{"id", "username"}))
			Expect(records.Rows).To(BeEmpty())
		})
	})

	Context("when a line has a different field count than the header", func() {
		It("fails with a malformed record error naming the line", func() {
			// ACT
			_, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceCSV, Name: "broken.csv"})

			// ASSERT
			Expect(errors.Is(err, domain.ErrMalformedRecord)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("broken.csv"))
			Expect(err.Error()).To(ContainSubstring("line 3"))
		})
	})

	Context("when the file is empty", func() {
		It("fails with a malformed record error", func() {
			_, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceCSV, Name: "empty.csv"})

			Expect(errors.Is(err, domain.ErrMalformedRecord)).To(BeTrue())
		})
	})

	Context("when the file does not exist", func() {
		It("surfaces the open failure", func() {
			_, err := extractor.Extract(ctx, domain.Source{Kind: domain.SourceCSV, Name: "missing.csv"})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("missing.csv"))
		})
	})
})
