package repositories_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"graphmigrate/src/domain"
	"graphmigrate/src/repositories"
	"graphmigrate/src/test_artefacts/fakes"
)

var _ = Describe("GraphSchemaRepository", func() {
	var (
		runner     *fakes.FakeGraphRunner
		repository *repositories.GraphSchemaRepository
		ctx        context.Context
	)

	statements := []string{
		"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE INDEX user_name_idx IF NOT EXISTS FOR (u:User) ON (u.username)",
	}

	BeforeEach(func() {
		ctx = context.Background()
		runner = fakes.NewFakeGraphRunner()
		repository = repositories.NewGraphSchemaRepository(runner, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("EnsureSchema", func() {
		Context("when the store accepts every statement", func() {
			It("executes them in declaration order", func() {
				// ACT
				err := repository.EnsureSchema(ctx, statements)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())

				calls := runner.Calls()
				Expect(calls).To(HaveLen(2))
				Expect(calls[0].Method).To(Equal("Exec"))
				Expect(calls[0].Cypher).To(Equal(statements[0]))
				Expect(calls[1].Cypher).To(Equal(statements[1]))
			})
		})

		Context("when an element already exists", func() {
			It("tolerates the conflict and keeps going", func() {
				// ARRANGE
				runner.ScriptError("CREATE CONSTRAINT", &neo4j.Neo4jError{
					Code: "Neo.ClientError.Schema.EquivalentSchemaRuleAlreadyExists",
					Msg:  "An equivalent constraint already exists",
				})

				// ACT
				err := repository.EnsureSchema(ctx, statements)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(runner.Calls()).To(HaveLen(2))
			})
		})

		Context("when the store rejects every statement", func() {
			It("aborts on the first failure", func() {
				// ARRANGE
				runner.ScriptExecError(errors.New("connection reset by peer"))

				// ACT
				err := repository.EnsureSchema(ctx, statements)

				// ASSERT
				Expect(errors.Is(err, domain.ErrSchemaConflict)).To(BeTrue())
				Expect(runner.Calls()).To(HaveLen(1))
			})
		})

		Context("when the store reports a structural conflict", func() {
			It("aborts with a schema conflict error", func() {
				// ARRANGE
				runner.ScriptError("CREATE CONSTRAINT", &neo4j.Neo4jError{
					Code: "Neo.ClientError.Schema.ConstraintValidationFailed",
					Msg:  "Existing data violates the constraint",
				})

				// ACT
				err := repository.EnsureSchema(ctx, statements)

				// ASSERT
				Expect(errors.Is(err, domain.ErrSchemaConflict)).To(BeTrue())
				Expect(runner.Calls()).To(HaveLen(1))
			})
		})
	})

	Describe("Clear", func() {
		It("detaches and deletes everything", func() {
			// ACT
			err := repository.Clear(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(runner.CallsContaining("MATCH (n) DETACH DELETE n")).To(HaveLen(1))
		})
	})
})
