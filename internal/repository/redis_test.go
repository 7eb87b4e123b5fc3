package repository

import (
	"context"
	"testing"
	"time"

	"bookvideolink/internal/config"
	"bookvideolink/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGetSession", func(t *testing.T) {
		session := models.NewSession("sid-1", time.Now())
		session.JourneyData["j1"] = &models.JourneySnapshot{
			Slices:            map[string]models.Slice{"bookACourtHearing": {"agencyCode": "C1"}},
			InstanceUnixEpoch: 1700000000000,
		}

		require.NoError(t, repo.SaveSession(ctx, session))

		got, err := repo.GetSession(ctx, "sid-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "sid-1", got.ID)
		require.Contains(t, got.JourneyData, "j1")
		assert.Equal(t, "C1", got.JourneyData["j1"].Slices["bookACourtHearing"].GetString("agencyCode"))
		assert.Equal(t, int64(1700000000000), got.JourneyData["j1"].InstanceUnixEpoch)

		assert.Equal(t, time.Hour, s.TTL("session:sid-1"))
	})

	t.Run("GetMissingSession", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SessionExpires", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, models.NewSession("sid-exp", time.Now())))
		s.FastForward(time.Hour + time.Second)

		got, err := repo.GetSession(ctx, "sid-exp")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DeleteSession", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, models.NewSession("sid-2", time.Now())))
		require.NoError(t, repo.DeleteSession(ctx, "sid-2"))

		got, _ := repo.GetSession(ctx, "sid-2")
		assert.Nil(t, got)
	})

	t.Run("CorruptSession", func(t *testing.T) {
		require.NoError(t, s.Set("session:bad", "{not json"))
		_, err := repo.GetSession(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("Claim", func(t *testing.T) {
		window := time.Minute

		claimed, err := repo.Claim(ctx, "submission:j1", window)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Equal(t, window, s.TTL(claimKeyPrefix+"submission:j1"))

		claimed, err = repo.Claim(ctx, "submission:j1", window)
		require.NoError(t, err)
		assert.False(t, claimed)

		s.FastForward(window + time.Millisecond)

		claimed, err = repo.Claim(ctx, "submission:j1", window)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("ReleaseClaim", func(t *testing.T) {
		claimed, err := repo.Claim(ctx, "submission:j2", time.Minute)
		require.NoError(t, err)
		require.True(t, claimed)

		require.NoError(t, repo.ReleaseClaim(ctx, "submission:j2"))

		claimed, err = repo.Claim(ctx, "submission:j2", time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisSessionRepository(nil, time.Hour)
		_, err := repo.GetSession(ctx, "sid")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})
}

func TestRedisSessionRepository_Unavailable(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer client.Close()
	s.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	_, err = repo.GetSession(context.Background(), "sid")
	assert.Error(t, err)
}
