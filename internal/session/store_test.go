package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statushub/statushub/internal/model"
)

func TestStore_PutGetDelete(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("DJKhaled")
	require.False(t, ok)

	s.Put(model.Session{
		UserID:    "DJKhaled",
		Token:     "tok",
		Partition: "USA",
		Row:       "DJKhaled",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	sess, ok := s.Get("DJKhaled")
	require.True(t, ok)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "USA", sess.Partition)
	assert.Equal(t, "DJKhaled", sess.Row)

	require.True(t, s.Delete("DJKhaled"))
	require.False(t, s.Delete("DJKhaled"))
	_, ok = s.Get("DJKhaled")
	require.False(t, ok)
}

func TestStore_OneEntryPerUser(t *testing.T) {
	s := NewStore()

	s.Put(model.Session{UserID: "Ted", Token: "first", ExpiresAt: time.Now().Add(time.Hour)})
	s.Put(model.Session{UserID: "Ted", Token: "second", ExpiresAt: time.Now().Add(time.Hour)})

	require.Equal(t, 1, s.Len())
	sess, ok := s.Get("Ted")
	require.True(t, ok)
	assert.Equal(t, "second", sess.Token)
}

func TestStore_ExpiredSessionEvicted(t *testing.T) {
	s := NewStore()
	s.Put(model.Session{UserID: "Ted", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)})

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok := s.Get("Ted")
	require.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ZeroExpiryNeverEvicts(t *testing.T) {
	s := NewStore()
	s.Put(model.Session{UserID: "Ted", Token: "tok"})

	s.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	_, ok := s.Get("Ted")
	require.True(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", n%10)
			s.Put(model.Session{UserID: id, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)})
			s.Get(id)
			if n%3 == 0 {
				s.Delete(id)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Len(), 10)
}
