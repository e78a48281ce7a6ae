package repositories

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func TestRedisRepository_EnsureAndLoad(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	repo := NewRedisRepository(client, "projects")

	require.NoError(t, repo.Ensure(ctx))

	raw, err := mr.Get("projects")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	projects, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestRedisRepository_EnsureDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("projects", `[{"id":"9","name":"keep"}]`))

	repo := NewRedisRepository(client, "projects")
	require.NoError(t, repo.Ensure(ctx))

	projects, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "keep", projects[0].Name)
}

func TestRedisRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	repo := NewRedisRepository(client, "estimates")

	require.NoError(t, repo.Save(ctx, sampleProjects(t)))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, []string{"Máy thi công", "Vật liệu"}, loaded[0].Sheets.Names())
	assert.Equal(t, "redis", repo.Driver())
}

func TestRedisRepository_MissingKeyIsEmpty(t *testing.T) {
	client, _ := setupTestRedis(t)
	projects, err := NewRedisRepository(client, "nothing-here").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestRedisRepository_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("projects", "{not json"))

	_, err := NewRedisRepository(client, "projects").Load(context.Background())
	assert.Error(t, err)
}
