package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pbaille/zhouyi/internal/oracle"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every Store must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := oracle.NewSession("contract-1", oracle.Chinese)
	require.NoError(t, s.ConfirmQuestion("问事业"))
	l, err := oracle.LineFromTotal(9)
	require.NoError(t, err)
	require.NoError(t, s.RecordLine(l))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &Record{
		Session:        s.Snapshot(),
		Interpretation: &oracle.Interpretation{Reading: "r", Summary: "s"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Load(ctx, "contract-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Session, got.Session)
	assert.Equal(t, rec.Interpretation, got.Interpretation)
	assert.True(t, now.Equal(got.CreatedAt))

	// Mutating the loaded copy must not leak into the store.
	got.Session.Question = "changed"
	again, err := store.Load(ctx, "contract-1")
	require.NoError(t, err)
	assert.Equal(t, "问事业", again.Session.Question)

	require.NoError(t, store.Save(ctx, &Record{Session: oracle.NewSession("contract-2", oracle.English).Snapshot()}))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"contract-1", "contract-2"}, ids)

	require.NoError(t, store.Delete(ctx, "contract-1"))
	_, err = store.Load(ctx, "contract-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"contract-2"}, ids)
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	runStoreContract(t, NewRedisStoreFromClient(client))
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewRedisStoreFromClient(client, WithPrefix("test:"), WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Record{Session: oracle.NewSession("abc", oracle.English).Snapshot()}))

	assert.True(t, mr.Exists("test:abc"))
	assert.Equal(t, time.Hour, mr.TTL("test:abc"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewRedisStoreFromClient(client)
	require.NoError(t, mr.Set("zhouyi:session:bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
