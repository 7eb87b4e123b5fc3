package repository

import (
	"context"
	"testing"
	"time"

	"bookvideolink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGetSession", func(t *testing.T) {
		session := models.NewSession("sid", time.Now())
		session.JourneyData["j1"] = &models.JourneySnapshot{Slices: map[string]models.Slice{"s": {"k": "v"}}}
		require.NoError(t, repo.SaveSession(ctx, session))

		got, err := repo.GetSession(ctx, "sid")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "v", got.JourneyData["j1"].Slices["s"].GetString("k"))
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "sid")
		require.NoError(t, err)
		got.JourneyData["j1"].Slices["s"]["k"] = "changed"

		again, err := repo.GetSession(ctx, "sid")
		require.NoError(t, err)
		assert.Equal(t, "v", again.JourneyData["j1"].Slices["s"].GetString("k"))
	})

	t.Run("DeleteSession", func(t *testing.T) {
		require.NoError(t, repo.DeleteSession(ctx, "sid"))
		got, err := repo.GetSession(ctx, "sid")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Expiry", func(t *testing.T) {
		now := time.Now()
		repo := NewMemorySessionRepository(time.Minute)
		repo.now = func() time.Time { return now }
		require.NoError(t, repo.SaveSession(ctx, models.NewSession("old", now)))

		repo.now = func() time.Time { return now.Add(2 * time.Minute) }
		got, err := repo.GetSession(ctx, "old")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Claim", func(t *testing.T) {
		now := time.Now()
		repo := NewMemorySessionRepository(time.Hour)
		repo.now = func() time.Time { return now }

		claimed, _ := repo.Claim(ctx, "k", time.Second)
		assert.True(t, claimed)
		claimed, _ = repo.Claim(ctx, "k", time.Second)
		assert.False(t, claimed)

		repo.now = func() time.Time { return now.Add(2 * time.Second) }
		claimed, _ = repo.Claim(ctx, "k", time.Second)
		assert.True(t, claimed)

		require.NoError(t, repo.ReleaseClaim(ctx, "k"))
		claimed, _ = repo.Claim(ctx, "k", time.Second)
		assert.True(t, claimed)
	})
}
