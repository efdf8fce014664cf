package repositories_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphmigrate/src/domain"
	"graphmigrate/src/repositories"
	"graphmigrate/src/test_artefacts/fakes"
	"graphmigrate/src/test_artefacts/stubs"
)

var _ = Describe("GraphLoadRepository", func() {
	var (
		runner     *fakes.FakeGraphRunner
		repository *repositories.GraphLoadRepository
		ctx        context.Context
		logger     *slog.Logger
	)

	userSpec := domain.EntitySpec{
		Label:  "User",
		Source: domain.Source{Kind: domain.SourceCSV, Name: "users.csv"},
		Key:    domain.FieldSpec{Name: "id", Type: domain.FieldInt},
		Properties: []domain.FieldSpec{
			{Name: "username", Type: domain.FieldString},
			{Name: "createdAt", Column: "created_at", Type: domain.FieldDateTime},
		},
	}

	socialPlan := domain.Plan{
		Name: "test",
		Entities: []domain.EntitySpec{
			userSpec,
			{
				Label:  "Tweet",
				Source: domain.Source{Kind: domain.SourceCSV, Name: "tweets.csv"},
				Key:    domain.FieldSpec{Name: "id", Type: domain.FieldInt},
			},
		},
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		runner = fakes.NewFakeGraphRunner()
		repository = repositories.NewGraphLoadRepository(runner, logger, 0)
	})

	Describe("UpsertEntities", func() {
		Context("when every record is well formed", func() {
			It("merges by natural key and reports the loaded count", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("id", "username", "created_at").
					WithRow("1", "alice", "2024-01-10T08:30:00").
					WithRow("2", "bob", "2024-02-14T19:05:00").
					Get()

				// ACT
				stats, err := repository.UpsertEntities(ctx, userSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats).To(Equal(domain.LoadStats{Name: "User", Offered: 2, Loaded: 2}))

				calls := runner.CallsContaining("MERGE (n:`User`")
				Expect(calls).To(HaveLen(1))
				Expect(calls[0].Cypher).To(ContainSubstring("UNWIND $rows AS row"))
				Expect(calls[0].Cypher).To(ContainSubstring("MERGE (n:`User` {`id`: row.`id`})"))
				Expect(calls[0].Cypher).To(ContainSubstring("SET n.`username` = row.`username`, n.`createdAt` = row.`createdAt`"))
			})

			It("converts values to the declared field types", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("id", "username", "created_at").
					WithRow("42", "alice", "2024-01-10T08:30:00").
					Get()

				// ACT
				_, err := repository.UpsertEntities(ctx, userSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				rows := runner.Calls()[0].Rows()
				Expect(rows).To(HaveLen(1))
				Expect(rows[0]["id"]).To(Equal(int64(42)))
				Expect(rows[0]["username"]).To(Equal("alice"))
			})
		})

		Context("when the snapshot is larger than the batch size", func() {
			It("splits the load into bounded batches", func() {
				// ARRANGE
				repository = repositories.NewGraphLoadRepository(runner, logger, 2)
				records := stubs.NewUsersRecordSet(5)

				// ACT
				stats, err := repository.UpsertEntities(ctx, userSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Loaded).To(Equal(5))
				Expect(runner.Calls()).To(HaveLen(3)) // 2 + 2 + 1
			})
		})

		Context("when the source header lacks a mapped column", func() {
			It("fails before preparing any row", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("id", "username").
					WithRow("1", "alice").
					Get()

				// ACT
				_, err := repository.UpsertEntities(ctx, userSpec, records)

				// ASSERT
				Expect(errors.Is(err, domain.ErrMalformedRecord)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring(`"created_at"`))
				Expect(runner.Calls()).To(BeEmpty())
			})
		})

		Context("when a record is missing its key", func() {
			It("aborts the whole load", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("id", "username", "created_at").
					WithRow("1", "alice", "2024-01-10T08:30:00").
					WithRow("", "bob", "2024-02-14T19:05:00").
					Get()

				// ACT
				_, err := repository.UpsertEntities(ctx, userSpec, records)

				// ASSERT
				Expect(errors.Is(err, domain.ErrMalformedRecord)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("record 2"))
				Expect(runner.Calls()).To(BeEmpty())
			})
		})

		Context("when the store rejects a batch", func() {
			It("surfaces the failure", func() {
				// ARRANGE
				runner.ScriptError("MERGE (n:`User`", errors.New("store unavailable"))
				records := stubs.NewUsersRecordSet(2)

				// ACT
				_, err := repository.UpsertEntities(ctx, userSpec, records)

				// ASSERT
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("store unavailable"))
			})
		})
	})

	Describe("MergeRelationships", func() {
		followsSpec := domain.RelationshipSpec{
			Type:   "FOLLOWS",
			Source: domain.Source{Kind: domain.SourceCSV, Name: "followers.csv"},
			Start:  domain.EndpointSpec{Label: "User", Column: "sourceId"},
			End:    domain.EndpointSpec{Label: "User", Column: "targetId"},
		}

		Context("when every endpoint resolves", func() {
			It("merges the directed edges and counts them", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("sourceId", "targetId").
					WithRow("1", "2").
					WithRow("2", "3").
					Get()

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, followsSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats).To(Equal(domain.LoadStats{Name: "FOLLOWS", Offered: 2, Loaded: 2}))

				calls := runner.CallsContaining("MERGE (a)-[r:`FOLLOWS`]->(b)")
				Expect(calls).To(HaveLen(1))
				Expect(calls[0].Cypher).To(ContainSubstring("MATCH (a:`User` {`id`: row.`__start`})"))
				Expect(calls[0].Cypher).To(ContainSubstring("MATCH (b:`User` {`id`: row.`__end`})"))
				Expect(calls[0].Cypher).To(ContainSubstring("RETURN count(r) AS count"))
			})
		})

		Context("when the edge snapshot exceeds the batch size", func() {
			It("splits the merge into bounded batches", func() {
				// ARRANGE
				repository = repositories.NewGraphLoadRepository(runner, logger, 3)
				records := stubs.NewFollowersRecordSet(7, 20)

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, followsSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats).To(Equal(domain.LoadStats{Name: "FOLLOWS", Offered: 7, Loaded: 7}))
				Expect(runner.CallsContaining("MERGE (a)-[r:`FOLLOWS`]")).To(HaveLen(3)) // 3 + 3 + 1
			})
		})

		Context("when some endpoints do not exist in the graph", func() {
			It("counts the unmatched rows as skips", func() {
				// ARRANGE: o MATCH filtra 1 das 3 rows
				runner.ScriptRows("MERGE (a)-[r:`FOLLOWS`]", []map[string]any{{"count": int64(2)}})
				records := stubs.NewRecordSetStub("sourceId", "targetId").
					WithRow("1", "2").
					WithRow("2", "3").
					WithRow("3", "999").
					Get()

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, followsSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Offered).To(Equal(3))
				Expect(stats.Loaded).To(Equal(2))
				Expect(stats.Skipped).To(Equal(1))
			})
		})

		Context("when the source header lacks an endpoint column", func() {
			It("fails before preparing any row", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("sourceId").
					WithRow("1").
					Get()

				// ACT
				_, err := repository.MergeRelationships(ctx, socialPlan, followsSpec, records)

				// ASSERT
				Expect(errors.Is(err, domain.ErrMalformedRecord)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring(`"targetId"`))
			})
		})

		Context("when an endpoint key is malformed", func() {
			It("skips the record and keeps loading", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("sourceId", "targetId").
					WithRow("1", "2").
					WithRow("not-a-number", "3").
					WithRow("", "4").
					Get()

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, followsSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Offered).To(Equal(3))
				Expect(stats.Loaded).To(Equal(1))
				Expect(stats.Skipped).To(Equal(2))
			})
		})

		Context("when the family has a discriminator", func() {
			retweetsSpec := domain.RelationshipSpec{
				Type:          "RETWEETS",
				Source:        domain.Source{Kind: domain.SourceCSV, Name: "tweet_relationships.csv"},
				Start:         domain.EndpointSpec{Label: "Tweet", Column: "sourceId"},
				End:           domain.EndpointSpec{Label: "Tweet", Column: "targetId"},
				Discriminator: &domain.Discriminator{Column: "type", Value: "RETWEET"},
			}

			It("only offers the matching rows", func() {
				// ARRANGE
				stub := stubs.NewRecordSetStub("sourceId", "targetId", "type")
				for i := 0; i < 10; i++ {
					stub = stub.WithRow("1", "2", "RETWEET")
				}
				for i := 0; i < 7; i++ {
					stub = stub.WithRow("1", "2", "REPLY")
				}

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, retweetsSpec, stub.Get())

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Offered).To(Equal(10))
				Expect(stats.Loaded).To(Equal(10))
				Expect(stats.Skipped).To(Equal(0))

				rows := runner.CallsContaining("MERGE (a)-[r:`RETWEETS`]")[0].Rows()
				Expect(rows).To(HaveLen(10))
			})
		})

		Context("when the family is symmetric", func() {
			sharedSpec := domain.RelationshipSpec{
				Type:      "SHARED_AUDIENCE",
				Source:    domain.Source{Kind: domain.SourceCSV, Name: "shared_audience.csv"},
				Start:     domain.EndpointSpec{Label: "User", Column: "source"},
				End:       domain.EndpointSpec{Label: "User", Column: "target"},
				Symmetric: true,
				Properties: []domain.FieldSpec{
					{Name: "weight", Type: domain.FieldFloat},
				},
			}

			It("creates both directions per source row", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("source", "target", "weight").
					WithRow("1", "2", "0.8").
					WithRow("2", "3", "0.5").
					Get()

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, sharedSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Offered).To(Equal(2))
				Expect(stats.Loaded).To(Equal(4))
				Expect(stats.Skipped).To(Equal(0))

				calls := runner.CallsContaining("MERGE (b)-[r2:`SHARED_AUDIENCE`]->(a)")
				Expect(calls).To(HaveLen(1))
				Expect(calls[0].Cypher).To(ContainSubstring("RETURN count(r) + count(r2) AS count"))
				Expect(calls[0].Cypher).To(ContainSubstring("r2.`weight` = row.`weight`"))
			})
		})

		Context("when the relationship type is dynamic", func() {
			eventsSpec := domain.RelationshipSpec{
				Source: domain.Source{Kind: domain.SourceCSV, Name: "events.csv"},
				Start:  domain.EndpointSpec{Label: "User", Column: "userId"},
				End:    domain.EndpointSpec{Label: "Tweet", Column: "tweetId"},
				DynamicType: &domain.DynamicType{
					Column: "event_type",
					Mapping: map[string]string{
						"view": "VIEW",
						"cart": "ADDED_TO_CART",
					},
					Default: "OBSERVED",
				},
			}

			It("groups records by resolved type and falls back to the default", func() {
				// ARRANGE
				records := stubs.NewRecordSetStub("userId", "tweetId", "event_type").
					WithRow("1", "10", "view").
					WithRow("1", "11", "view").
					WithRow("2", "10", "cart").
					WithRow("3", "12", "wishlist").
					Get()

				// ACT
				stats, err := repository.MergeRelationships(ctx, socialPlan, eventsSpec, records)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Offered).To(Equal(4))
				Expect(stats.Loaded).To(Equal(4))

				Expect(runner.CallsContaining("MERGE (a)-[r:`VIEW`]")[0].Rows()).To(HaveLen(2))
				Expect(runner.CallsContaining("MERGE (a)-[r:`ADDED_TO_CART`]")[0].Rows()).To(HaveLen(1))
				Expect(runner.CallsContaining("MERGE (a)-[r:`OBSERVED`]")[0].Rows()).To(HaveLen(1))
			})
		})
	})
})
