// internal/sessionstore/redis_test.go
package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener/internal/common/errors"
	"screener/internal/common/logger"
	"screener/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl, logger.NewNoOpLogger()), mr
}

func testSession(id string) *models.Session {
	return &models.Session{
		ID:        id,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Phase:     models.PhaseAnswering,
		Profile: models.CandidateProfile{
			FullName:          "Jordan Blake",
			Email:             "jordan.blake@example.com",
			DesiredPosition:   "Backend Engineer",
			YearsOfExperience: 5,
			TechStack:         []string{"Go"},
		},
		Questions: []models.Question{
			{Text: "What is a goroutine?", Type: models.QuestionTypeText},
		},
		Answers: []string{""},
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s1")))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, models.PhaseAnswering, got.Phase)
	assert.Equal(t, "Jordan Blake", got.Profile.FullName)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, models.QuestionTypeText, got.Questions[0].Type)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionNotFound))
}

func TestRedisStore_SaveRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	session := testSession("s1")

	require.NoError(t, store.Create(ctx, session))
	mr.FastForward(30 * time.Minute)

	require.NoError(t, store.Save(ctx, session))
	mr.FastForward(45 * time.Minute)

	_, err := store.Get(ctx, "s1")
	assert.NoError(t, err)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s1")))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "s1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionNotFound))
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionNotFound))
}

func TestRedisStore_KeyNamespace(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	require.NoError(t, store.Create(context.Background(), testSession("s1")))
	assert.True(t, mr.Exists("screener:session:s1"))
}
