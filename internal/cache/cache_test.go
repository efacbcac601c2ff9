package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Hour), mr
}

func TestKey_Hash(t *testing.T) {
	base := Key{Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}

	assert.Equal(t, base.Hash(), Key{Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}.Hash())
	assert.Equal(t, base.Hash(), Key{Revision: 9, Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}.Hash())
	assert.NotEqual(t, base.Hash(), Key{Algorithm: "rabin-karp", ShingleSize: 3, Text: "cat sit mat"}.Hash())
	assert.NotEqual(t, base.Hash(), Key{Algorithm: "kmp", ShingleSize: 4, Text: "cat sit mat"}.Hash())
	assert.NotEqual(t, base.Hash(), Key{Algorithm: "kmp", ShingleSize: 3, Text: "cat sit"}.Hash())
}

func TestFormatKey(t *testing.T) {
	k := Key{Revision: 7, Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}

	key := FormatKey(k)
	assert.True(t, strings.HasPrefix(key, "overlap:report:7:"))
	assert.Len(t, strings.TrimPrefix(key, "overlap:report:7:"), 16)

	k.Revision = 8
	assert.NotEqual(t, key, FormatKey(k))
}

func TestRevision(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	rev, err := c.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rev)

	require.NoError(t, c.BumpRevision(ctx))
	require.NoError(t, c.BumpRevision(ctx))

	rev, err = c.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
}

func TestLookupStore(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	k := Key{Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}

	report, err := c.Lookup(ctx, k)
	require.NoError(t, err)
	assert.Nil(t, report)

	want := &models.Report{
		ID:            "r1",
		Algorithm:     "kmp",
		ShingleSize:   3,
		Uniqueness:    50,
		TotalShingles: 2,
		HitShingles:   1,
		Verdict:       models.VerdictSuspicious,
	}
	require.NoError(t, c.Store(ctx, k, want))
	assert.Equal(t, time.Hour, mr.TTL(FormatKey(k)))

	got, err := c.Lookup(ctx, k)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Uniqueness, got.Uniqueness)
	assert.Equal(t, want.HitShingles, got.HitShingles)
	assert.Equal(t, want.Verdict, got.Verdict)
}

func TestLookupMissAfterBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	rev, err := c.Revision(ctx)
	require.NoError(t, err)
	k := Key{Revision: rev, Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}
	require.NoError(t, c.Store(ctx, k, &models.Report{ID: "r1"}))

	require.NoError(t, c.BumpRevision(ctx))
	rev, err = c.Revision(ctx)
	require.NoError(t, err)
	k.Revision = rev

	report, err := c.Lookup(ctx, k)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestStoreKeepsRevisionOfSnapshot(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	rev, err := c.Revision(ctx)
	require.NoError(t, err)
	k := Key{Revision: rev, Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"}

	report, err := c.Lookup(ctx, k)
	require.NoError(t, err)
	require.Nil(t, report)

	// corpus changes while the check is scoring
	require.NoError(t, c.BumpRevision(ctx))
	require.NoError(t, c.Store(ctx, k, &models.Report{ID: "stale"}))

	assert.True(t, mr.Exists(FormatKey(k)))

	current, err := c.Revision(ctx)
	require.NoError(t, err)
	report, err = c.Lookup(ctx, Key{Revision: current, Algorithm: "kmp", ShingleSize: 3, Text: "cat sit mat"})
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestLookupCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	k := Key{Algorithm: "kmp", ShingleSize: 3, Text: "x"}
	require.NoError(t, mr.Set(FormatKey(k), "{not json"))

	_, err := c.Lookup(context.Background(), k)
	assert.Error(t, err)
}
