package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"graphmigrate/src/infra/redis"
)

// CachedGraphQueryRepository decora o GraphQueryRepository com cache em
// redis. Erro de cache nunca derruba a consulta: loga e segue para o
// store. O set é assíncrono para não segurar a resposta.
type CachedGraphQueryRepository struct {
	graphQueryRepository *GraphQueryRepository
	redisClient          *redis.RedisClient
}

func NewCachedGraphQueryRepository(
	graphQueryRepository *GraphQueryRepository,
	redisClient *redis.RedisClient,
) *CachedGraphQueryRepository {
	return &CachedGraphQueryRepository{
		graphQueryRepository: graphQueryRepository,
		redisClient:          redisClient,
	}
}

func (r *CachedGraphQueryRepository) NodeCount(ctx context.Context, label string) (int64, error) {
	return r.cachedCount(ctx, cacheKey("nodecount", label), func() (int64, error) {
		return r.graphQueryRepository.NodeCount(ctx, label)
	})
}

func (r *CachedGraphQueryRepository) RelationshipCount(ctx context.Context, relType string) (int64, error) {
	return r.cachedCount(ctx, cacheKey("relcount", relType), func() (int64, error) {
		return r.graphQueryRepository.RelationshipCount(ctx, relType)
	})
}

func (r *CachedGraphQueryRepository) TopByIncomingDegree(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	return r.cachedRows(ctx, cacheKey("top", label, relType, strconv.Itoa(limit)), func() ([]map[string]any, error) {
		return r.graphQueryRepository.TopByIncomingDegree(ctx, label, relType, limit)
	})
}

func (r *CachedGraphQueryRepository) DistributionByBucket(ctx context.Context, label string, property string, bucket string) ([]map[string]any, error) {
	return r.cachedRows(ctx, cacheKey("distribution", label, property, bucket), func() ([]map[string]any, error) {
		return r.graphQueryRepository.DistributionByBucket(ctx, label, property, bucket)
	})
}

// ShortestPath não passa pelo cache: o espaço de chaves é arbitrário
// demais para valer a pena.
func (r *CachedGraphQueryRepository) ShortestPath(ctx context.Context, fromLabel string, fromKey string, from any, toLabel string, toKey string, to any) ([]map[string]any, error) {
	return r.graphQueryRepository.ShortestPath(ctx, fromLabel, fromKey, from, toLabel, toKey, to)
}

func (r *CachedGraphQueryRepository) PageRank(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	return r.cachedRows(ctx, cacheKey("pagerank", label, relType, strconv.Itoa(limit)), func() ([]map[string]any, error) {
		return r.graphQueryRepository.PageRank(ctx, label, relType, limit)
	})
}

func (r *CachedGraphQueryRepository) Communities(ctx context.Context, label string, relType string, limit int) ([]map[string]any, error) {
	return r.cachedRows(ctx, cacheKey("communities", label, relType, strconv.Itoa(limit)), func() ([]map[string]any, error) {
		return r.graphQueryRepository.Communities(ctx, label, relType, limit)
	})
}

func (r *CachedGraphQueryRepository) cachedRows(ctx context.Context, key string, fetch func() ([]map[string]any, error)) ([]map[string]any, error) {
	cached, found, err := r.redisClient.GetKey(ctx, key)
	if err != nil {
		// Log erro de cache mas continua com o store
		log.Printf("Cache error for key %s: %v", key, err)
	}
	if found && err == nil {
		var rows []map[string]any
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			return rows, nil
		}
		log.Printf("Cache payload for key %s is corrupt, refetching", key)
	}

	rows, err := fetch()
	if err != nil {
		return nil, err
	}

	r.setAsync(key, rows)
	return rows, nil
}

func (r *CachedGraphQueryRepository) cachedCount(ctx context.Context, key string, fetch func() (int64, error)) (int64, error) {
	cached, found, err := r.redisClient.GetKey(ctx, key)
	if err != nil {
		log.Printf("Cache error for key %s: %v", key, err)
	}
	if found && err == nil {
		if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			return count, nil
		}
	}

	count, err := fetch()
	if err != nil {
		return 0, err
	}

	r.setAsync(key, count)
	return count, nil
}

func (r *CachedGraphQueryRepository) setAsync(key string, value any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		payload, err := json.Marshal(value)
		if err != nil {
			log.Printf("Failed to marshal cache payload for key %s: %v", key, err)
			return
		}

		if err := r.redisClient.SetKey(ctx, key, string(payload)); err != nil {
			log.Printf("Failed to cache key %s: %v", key, err)
		}
	}()
}

func cacheKey(parts ...string) string {
	keyData := "query"
	for _, part := range parts {
		keyData += ":" + part
	}

	// Hash para chave mais limpa e consistente
	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("graph:query:%x", hash)
}
