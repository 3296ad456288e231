package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SaveGetDelete(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()
	sess := domainauth.Session{ID: "tok", RoleName: "admin", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, s.Save(ctx, sess))
	got, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, s.Delete(ctx, "tok"))
	_, err = s.Get(ctx, "tok")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_RejectsInvalid(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	assert.Error(t, s.Save(ctx, domainauth.Session{ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Error(t, s.Save(ctx, domainauth.Session{ID: "x", ExpiresAt: time.Now().Add(-time.Second)}))
}

func TestSessionStore_ExpiryAndSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessionStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "a", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "b", ExpiresAt: now.Add(time.Hour)}))

	now = now.Add(2 * time.Minute)
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Sweep())
}

func TestSessionStore_Concurrent(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = s.Save(ctx, domainauth.Session{ID: id, ExpiresAt: time.Now().Add(time.Hour)})
			_, _ = s.Get(ctx, id)
			_ = s.Delete(ctx, id)
		}(i)
	}
	wg.Wait()
}
