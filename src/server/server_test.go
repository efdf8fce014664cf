package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphmigrate/src/domain/plans"
	"graphmigrate/src/server"
)

// fakeQueries responde as consultas do servidor com valores fixos e
// registra os argumentos recebidos.
type fakeQueries struct {
	nodeCounts map[string]int64
	edgeCounts map[string]int64
	rows       []map[string]any
	err        error

	lastLabel   string
	lastRelType string
	lastLimit   int
	lastFrom    any
	lastTo      any
}

func (f *fakeQueries) NodeCount(ctx context.Context, label string) (int64, error) {
	return f.nodeCounts[label], f.err
}

func (f *fakeQueries) RelationshipCount(ctx context.Context, relType string) (int64, error) {
	return f.edgeCounts[relType], f.err
}

func (f *fakeQueries) TopByIncomingDegree(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	f.lastLabel, f.lastRelType, f.lastLimit = label, relType, limit
	return f.rows, f.err
}

func (f *fakeQueries) DistributionByBucket(ctx context.Context, label string, property string, bucket string) ([]map[string]any, error) {
	f.lastLabel = label
	return f.rows, f.err
}

func (f *fakeQueries) ShortestPath(ctx context.Context, fromLabel string, fromKey string, from any, toLabel string, toKey string, to any) ([]map[string]any, error) {
	f.lastFrom, f.lastTo = from, to
	return f.rows, f.err
}

func (f *fakeQueries) PageRank(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	f.lastLabel, f.lastRelType, f.lastLimit = label, relType, limit
	return f.rows, f.err
}

func (f *fakeQueries) Communities(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	f.lastLabel, f.lastRelType, f.lastLimit = label, relType, limit
	return f.rows, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

var _ = Describe("Server", func() {
	var (
		queries *fakeQueries
		pinger  *fakePinger
		srv     *server.Server
	)

	get := func(path string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		srv.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		return recorder
	}

	BeforeEach(func() {
		queries = &fakeQueries{
			nodeCounts: map[string]int64{"User": 10, "Tweet": 50},
			edgeCounts: map[string]int64{"FOLLOWS": 30},
		}
		pinger = &fakePinger{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		srv = server.NewServer(logger, 0, plans.Social(), queries, pinger)
	})

	Describe("GET /health", func() {
		It("reports healthy when the store responds", func() {
			response := get("/health")

			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(ContainSubstring(`"status":"healthy"`))
		})

		It("reports unhealthy when the store is unreachable", func() {
			pinger.err = errors.New("connection refused")

			response := get("/health")

			Expect(response.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(response.Body.String()).To(ContainSubstring(`"status":"unhealthy"`))
		})
	})

	Describe("GET /v1/stats", func() {
		It("returns node and edge counts for the active plan", func() {
			// ACT
			response := get("/v1/stats")

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))

			var stats server.StatsDTO
			Expect(json.Unmarshal(response.Body.Bytes(), &stats)).To(Succeed())
			Expect(stats.Plan).To(Equal("social"))
			Expect(stats.Nodes).To(HaveKeyWithValue("User", int64(10)))
			Expect(stats.Nodes).To(HaveKeyWithValue("Tweet", int64(50)))
			Expect(stats.Edges).To(HaveKeyWithValue("FOLLOWS", int64(30)))
		})

		It("maps store failures to 500", func() {
			queries.err = errors.New("store unavailable")

			response := get("/v1/stats")

			Expect(response.Code).To(Equal(http.StatusInternalServerError))
			Expect(response.Body.String()).NotTo(ContainSubstring("store unavailable"))
		})
	})

	Describe("GET /v1/nodes/{label}/top", func() {
		It("ranks nodes by incoming degree of the requested type", func() {
			// ARRANGE
			queries.rows = []map[string]any{
				{"node": map[string]any{"username": "alice"}, "degree": int64(42)},
			}

			// ACT
			response := get("/v1/nodes/User/top?rel=FOLLOWS&limit=5")

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(queries.lastLabel).To(Equal("User"))
			Expect(queries.lastRelType).To(Equal("FOLLOWS"))
			Expect(queries.lastLimit).To(Equal(5))

			var ranked []server.RankedNodeDTO
			Expect(json.Unmarshal(response.Body.Bytes(), &ranked)).To(Succeed())
			Expect(ranked).To(HaveLen(1))
			Expect(ranked[0].Degree).To(Equal(int64(42)))
		})

		It("rejects labels outside the active plan", func() {
			response := get("/v1/nodes/Account/top?rel=FOLLOWS")

			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects relationship types outside the active plan", func() {
			response := get("/v1/nodes/User/top?rel=OWNS")

			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("falls back to the default limit for out-of-range values", func() {
			response := get("/v1/nodes/User/top?rel=FOLLOWS&limit=99999")

			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(queries.lastLimit).To(Equal(10))
		})
	})

	Describe("GET /v1/nodes/{label}/distribution", func() {
		It("buckets a date property", func() {
			// ARRANGE
			queries.rows = []map[string]any{
				{"bucket": "2024-01-01", "count": int64(12)},
				{"bucket": "2024-01-02", "count": int64(7)},
			}

			// ACT
			response := get("/v1/nodes/Tweet/distribution?property=createdAt&bucket=day")

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))

			var buckets []server.BucketDTO
			Expect(json.Unmarshal(response.Body.Bytes(), &buckets)).To(Succeed())
			Expect(buckets).To(HaveLen(2))
			Expect(buckets[0].Bucket).To(Equal("2024-01-01"))
			Expect(buckets[0].Count).To(Equal(int64(12)))
		})

		It("rejects unknown buckets", func() {
			response := get("/v1/nodes/Tweet/distribution?property=createdAt&bucket=hour")

			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("requires a property name", func() {
			response := get("/v1/nodes/Tweet/distribution")

			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /v1/path", func() {
		It("converts endpoint keys to the key type of each label", func() {
			// ARRANGE
			queries.rows = []map[string]any{
				{
					"nodes":  []any{map[string]any{"id": int64(1)}, map[string]any{"id": int64(9)}},
					"length": int64(1),
				},
			}

			// ACT
			response := get("/v1/path?from_label=User&from=1&to_label=User&to=9")

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(queries.lastFrom).To(Equal(int64(1)))
			Expect(queries.lastTo).To(Equal(int64(9)))

			var path server.PathDTO
			Expect(json.Unmarshal(response.Body.Bytes(), &path)).To(Succeed())
			Expect(path.Nodes).To(HaveLen(2))
			Expect(path.Length).To(Equal(int64(1)))
		})

		It("returns 404 when no path exists", func() {
			queries.rows = nil

			response := get("/v1/path?from_label=User&from=1&to_label=User&to=9")

			Expect(response.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects non-numeric keys for integer-keyed labels", func() {
			response := get("/v1/path?from_label=User&from=alice&to_label=User&to=9")

			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects labels outside the active plan", func() {
			response := get("/v1/path?from_label=Account&from=1&to_label=User&to=9")

			Expect(response.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /v1/analytics/pagerank", func() {
		It("returns scored nodes", func() {
			// ARRANGE
			queries.rows = []map[string]any{
				{"node": map[string]any{"username": "alice"}, "score": 3.14},
			}

			// ACT
			response := get("/v1/analytics/pagerank?label=User&rel=FOLLOWS")

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))

			var scored []server.ScoredNodeDTO
			Expect(json.Unmarshal(response.Body.Bytes(), &scored)).To(Succeed())
			Expect(scored).To(HaveLen(1))
			Expect(scored[0].Score).To(Equal(3.14))
		})

		It("requires plan-declared label and relationship type", func() {
			Expect(get("/v1/analytics/pagerank?label=Account&rel=FOLLOWS").Code).To(Equal(http.StatusBadRequest))
			Expect(get("/v1/analytics/pagerank?label=User&rel=OWNS").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /v1/analytics/communities", func() {
		It("returns community members", func() {
			// ARRANGE
			queries.rows = []map[string]any{
				{"node": map[string]any{"username": "alice"}, "communityId": int64(3)},
				{"node": map[string]any{"username": "bob"}, "communityId": int64(3)},
			}

			// ACT
			response := get("/v1/analytics/communities?label=User&rel=FOLLOWS")

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))

			var members []server.CommunityNodeDTO
			Expect(json.Unmarshal(response.Body.Bytes(), &members)).To(Succeed())
			Expect(members).To(HaveLen(2))
			Expect(members[0].CommunityID).To(Equal(int64(3)))
		})
	})
})
