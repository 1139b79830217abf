package follow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-social/folio/internal/db"
	"github.com/folio-social/folio/internal/models"
)

func seed(t *testing.T, store db.Store, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(names))
	for _, n := range names {
		acc := &models.Account{
			Username:     n,
			RealName:     n,
			Email:        n + "@x.com",
			PasswordHash: "hash",
		}
		require.NoError(t, store.Create(context.Background(), acc))
		ids = append(ids, acc.ID)
	}
	return ids
}

func load(t *testing.T, store db.Store, id int64) *models.Account {
	t.Helper()
	acc, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return acc
}

func TestGraph_FollowIsSymmetric(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	g := NewGraph(store)
	ids := seed(t, store, "alice", "bob")
	alice, bob := ids[0], ids[1]

	require.NoError(t, g.Follow(ctx, alice, bob))

	assert.Equal(t, []int64{bob}, []int64(load(t, store, alice).Following))
	assert.Equal(t, []int64{alice}, []int64(load(t, store, bob).FollowedBy))
	assert.Empty(t, load(t, store, alice).FollowedBy)
	assert.Empty(t, load(t, store, bob).Following)
}

func TestGraph_UnfollowIsInverse(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	g := NewGraph(store)
	ids := seed(t, store, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	require.NoError(t, g.Follow(ctx, carol, bob))
	beforeAlice := load(t, store, alice).FollowState()
	beforeBob := load(t, store, bob).FollowState()

	require.NoError(t, g.Follow(ctx, alice, bob))
	require.NoError(t, g.Unfollow(ctx, alice, bob))

	assert.Equal(t, beforeAlice, load(t, store, alice).FollowState())
	assert.Equal(t, beforeBob, load(t, store, bob).FollowState())
}

func TestGraph_Errors(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	g := NewGraph(store)
	ids := seed(t, store, "alice", "bob")
	alice, bob := ids[0], ids[1]

	require.NoError(t, g.Follow(ctx, alice, bob))

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"self follow", func() error { return g.Follow(ctx, alice, alice) }, models.ErrSelfFollow},
		{"self unfollow", func() error { return g.Unfollow(ctx, bob, bob) }, models.ErrSelfFollow},
		{"duplicate follow", func() error { return g.Follow(ctx, alice, bob) }, models.ErrAlreadyFollowing},
		{"missing follower", func() error { return g.Follow(ctx, 99, bob) }, models.ErrNotFound},
		{"missing followed", func() error { return g.Follow(ctx, alice, 99) }, models.ErrNotFound},
		{"reverse edge absent", func() error { return g.Unfollow(ctx, bob, alice) }, models.ErrNotFollowing},
		{"unfollow missing account", func() error { return g.Unfollow(ctx, alice, 99) }, models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}

	// failed calls leave the graph untouched
	assert.Equal(t, []int64{bob}, []int64(load(t, store, alice).Following))
	assert.Equal(t, []int64{alice}, []int64(load(t, store, bob).FollowedBy))
}

func TestGraph_UnfollowRepairsLegacyDuplicates(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	g := NewGraph(store)
	ids := seed(t, store, "alice", "bob")
	alice, bob := ids[0], ids[1]

	a := load(t, store, alice)
	a.Following = append(a.Following, bob, bob)
	require.NoError(t, store.Update(ctx, a))
	b := load(t, store, bob)
	b.FollowedBy = append(b.FollowedBy, alice, alice)
	require.NoError(t, store.Update(ctx, b))

	require.NoError(t, g.Unfollow(ctx, alice, bob))
	assert.Empty(t, load(t, store, alice).Following)
	assert.Empty(t, load(t, store, bob).FollowedBy)
}

func TestGraph_Detach(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	g := NewGraph(store)
	ids := seed(t, store, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	require.NoError(t, g.Follow(ctx, alice, bob))
	require.NoError(t, g.Follow(ctx, bob, carol))
	require.NoError(t, g.Follow(ctx, carol, alice))

	err := store.Transaction(ctx, func(tx db.Store) error {
		if err := g.Detach(ctx, tx, bob); err != nil {
			return err
		}
		return tx.Delete(ctx, bob)
	})
	require.NoError(t, err)

	assert.Empty(t, load(t, store, alice).Following)
	assert.Empty(t, load(t, store, carol).FollowedBy)
	assert.Equal(t, []int64{alice}, []int64(load(t, store, carol).Following))
	assert.Equal(t, []int64{carol}, []int64(load(t, store, alice).FollowedBy))
}

func TestGraph_ConcurrentFollowsStaySymmetric(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	g := NewGraph(store)

	names := make([]string, 8)
	for i := range names {
		names[i] = fmt.Sprintf("user%d", i)
	}
	ids := seed(t, store, names...)

	var wg sync.WaitGroup
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			wg.Add(1)
			go func(a, b int64) {
				defer wg.Done()
				assert.NoError(t, g.Follow(ctx, a, b))
			}(a, b)
		}
	}
	wg.Wait()

	for _, id := range ids {
		acc := load(t, store, id)
		assert.Len(t, acc.Following, len(ids)-1)
		assert.Len(t, acc.FollowedBy, len(ids)-1)
		for _, other := range acc.Following {
			assert.True(t, load(t, store, other).IsFollowedBy(id))
		}
	}
}
