package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KipVault/internal/model"
)

func TestStreakRepository_GetUnknownReturnsNil(t *testing.T) {
	db := newTestDB(t)
	r := NewStreakRepository(db)

	got, err := r.Get(context.Background(), "unknown-vault")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStreakRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewStreakRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	created, err := r.CreateIfAbsent(ctx, &model.VaultStreak{
		VaultAddress:  "vault-A",
		StreakCount:   1,
		LongestStreak: 1,
		LastPingAt:    now,
	})
	require.NoError(t, err)
	assert.True(t, created)

	// повторная вставка того же ключа — no-op
	created, err = r.CreateIfAbsent(ctx, &model.VaultStreak{
		VaultAddress:  "vault-A",
		StreakCount:   99,
		LongestStreak: 99,
		LastPingAt:    now,
	})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := r.Get(ctx, "vault-A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.StreakCount)
	assert.Equal(t, int64(1), got.LongestStreak)
}

func TestStreakRepository_UpdateGuarded(t *testing.T) {
	db := newTestDB(t)
	r := NewStreakRepository(db)
	ctx := context.Background()

	t0 := time.Now().UTC().Truncate(time.Second)
	_, err := r.CreateIfAbsent(ctx, &model.VaultStreak{
		VaultAddress:  "vault-B",
		StreakCount:   3,
		LongestStreak: 5,
		LastPingAt:    t0,
	})
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	err = r.UpdateGuarded(ctx, &model.VaultStreak{
		VaultAddress:  "vault-B",
		StreakCount:   4,
		LongestStreak: 5,
		LastPingAt:    t1,
	}, t0)
	require.NoError(t, err)

	got, err := r.Get(ctx, "vault-B")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.StreakCount)

	// CAS по устаревшему prevLastPing — конфликт, запись не перетирается
	err = r.UpdateGuarded(ctx, &model.VaultStreak{
		VaultAddress:  "vault-B",
		StreakCount:   1,
		LongestStreak: 5,
		LastPingAt:    t1.Add(time.Hour),
	}, t0)
	assert.ErrorIs(t, err, ErrConflict)

	got, err = r.Get(ctx, "vault-B")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.StreakCount)
}

func TestStreakRepository_Clear(t *testing.T) {
	db := newTestDB(t)
	r := NewStreakRepository(db)
	ctx := context.Background()

	_, err := r.CreateIfAbsent(ctx, &model.VaultStreak{
		VaultAddress:  "vault-C",
		StreakCount:   1,
		LongestStreak: 1,
		LastPingAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, r.Clear(ctx, "vault-C"))

	got, err := r.Get(ctx, "vault-C")
	require.NoError(t, err)
	assert.Nil(t, got)

	// очистка несуществующего — не ошибка
	assert.NoError(t, r.Clear(ctx, "vault-C"))
}
