package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestSessions_StorePerSession(t *testing.T) {
	mirror := NewMemoryMirror()
	sessions := NewSessions(mirror)
	t.Cleanup(func() { _ = sessions.Close(context.Background()) })

	alice := sessions.Get(context.Background(), "alice")
	bob := sessions.Get(context.Background(), "bob")
	require.NotSame(t, alice, bob)
	require.Same(t, alice, sessions.Get(context.Background(), "alice"))
	require.True(t, alice.IsLoaded())
	require.Equal(t, SessionKey("alice"), alice.Key())

	alice.AddToCart(guitar, 1)
	require.Equal(t, 1, alice.ItemCount())
	require.Equal(t, 0, bob.ItemCount())
	require.Equal(t, 2, sessions.Len())
}

func TestSessions_ReleaseFlushesAndReloads(t *testing.T) {
	mirror := NewMemoryMirror()
	sessions := NewSessions(mirror)
	t.Cleanup(func() { _ = sessions.Close(context.Background()) })

	first := sessions.Get(context.Background(), "s1")
	first.AddToCart(pick, 3)
	require.NoError(t, sessions.Release(context.Background(), "s1"))
	require.NoError(t, sessions.Release(context.Background(), "s1"))
	require.Equal(t, 0, sessions.Len())

	second := sessions.Get(context.Background(), "s1")
	require.NotSame(t, first, second)
	require.Equal(t, 3, second.ItemCount())
}

func TestSessions_CloseFlushesEveryStore(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mirror := NewMemoryMirror()
	sessions := NewSessions(mirror)

	sessions.Get(context.Background(), "a").AddToCart(guitar, 1)
	sessions.Get(context.Background(), "b").AddToCart(pick, 2)
	require.NoError(t, sessions.Close(context.Background()))

	for _, id := range []string{"a", "b"} {
		_, err := mirror.Load(context.Background(), SessionKey(id))
		require.NoError(t, err, id)
	}
}

func TestSessions_EvictIdleBoundsOpenStores(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mirror := NewMemoryMirror()
	sessions := NewSessions(mirror)
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return clock }
	defer sessions.Close(context.Background())

	for i := 0; i < 100; i++ {
		sessions.Get(context.Background(), fmt.Sprintf("anon-%d", i))
	}
	sessions.Get(context.Background(), "buyer").AddToCart(guitar, 2)
	require.Equal(t, 101, sessions.Len())

	clock = clock.Add(20 * time.Minute)
	sessions.Get(context.Background(), "regular")
	clock = clock.Add(20 * time.Minute)

	n, err := sessions.EvictIdle(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 101, n)
	require.Equal(t, 1, sessions.Len())

	data, err := mirror.Load(context.Background(), SessionKey("buyer"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"quantity":2`)
	require.Equal(t, 2, sessions.Get(context.Background(), "buyer").ItemCount())
}

func TestSessions_RunEvictionReleasesIdleStores(t *testing.T) {
	sessions := NewSessions(NewMemoryMirror())
	defer sessions.Close(context.Background())
	for i := 0; i < 10; i++ {
		sessions.Get(context.Background(), fmt.Sprintf("s%d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sessions.RunEviction(ctx, 5*time.Millisecond, time.Millisecond, zap.NewNop())
	}()

	require.Eventually(t, func() bool { return sessions.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
