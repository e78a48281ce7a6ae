package repositories

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"dutoan_backend/internal/config"
	"dutoan_backend/internal/models"
)

// RedisRepository keeps the collection under a single string key.
type RedisRepository struct {
	rdb *redis.Client
	key string
}

func NewRedisRepository(rdb *redis.Client, key string) *RedisRepository {
	return &RedisRepository{rdb: rdb, key: key}
}

func (r *RedisRepository) Driver() string { return config.DriverRedis }

func (r *RedisRepository) Ensure(ctx context.Context) error {
	return r.rdb.SetNX(ctx, r.key, emptyDocument, 0).Err()
}

func (r *RedisRepository) Load(ctx context.Context) ([]models.Project, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Project{}, nil
		}
		return nil, err
	}
	return decodeProjects(data)
}

func (r *RedisRepository) Save(ctx context.Context, projects []models.Project) error {
	data, err := encodeProjects(projects)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key, data, 0).Err()
}
