package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	r := NewClaimRepository(db)
	ctx := context.Background()

	created, err := r.CreateIfAbsent(ctx, "vault-1", "recipient-X", "grandpa's vault")
	require.NoError(t, err)
	assert.True(t, created)

	// повторный claim того же vault — no-op
	created, err = r.CreateIfAbsent(ctx, "vault-1", "recipient-Y", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = r.CreateIfAbsent(ctx, "vault-2", "recipient-X", "")
	require.NoError(t, err)

	list, err := r.ListByClaimer(ctx, "recipient-X")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = r.ListByClaimer(ctx, "recipient-Z")
	require.NoError(t, err)
	assert.Empty(t, list)
}
