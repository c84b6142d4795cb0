package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockBackend) Save(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

// memBackend is a map-backed Backend for property style tests.
type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemBackend() *memBackend { return &memBackend{data: map[string][]byte{}} }

func (b *memBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (b *memBackend) Save(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = append([]byte(nil), data...)
	return nil
}

// persisted reopens key from the backend, the way a fresh process would.
func persisted(t *testing.T, b Backend, key string) []string {
	t.Helper()
	s, err := Open(context.Background(), b, key)
	require.NoError(t, err)
	return s.IDs()
}

func TestStore_AddRemoveContains(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s, err := Open(ctx, b, DefaultKey)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, "1"))
	require.NoError(t, s.Add(ctx, "2"))
	require.NoError(t, s.Add(ctx, "1"))
	assert.Equal(t, []string{"1", "2"}, s.IDs())
	assert.True(t, s.Contains("2"))

	require.NoError(t, s.Remove(ctx, "1"))
	require.NoError(t, s.Remove(ctx, "absent"))
	assert.Equal(t, []string{"2"}, s.IDs())
	assert.False(t, s.Contains("1"))

	assert.Equal(t, s.IDs(), persisted(t, b, DefaultKey))
}

func TestStore_ToggleTwiceRestoresSet(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s, err := Open(ctx, b, DefaultKey)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "a"))
	require.NoError(t, s.Add(ctx, "b"))

	for _, id := range []string{"a", "b", "c"} {
		before := s.IDs()
		was := s.Contains(id)

		now, err := s.Toggle(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, !was, now)
		assert.Equal(t, s.IDs(), persisted(t, b, DefaultKey))

		now, err = s.Toggle(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, was, now)
		assert.ElementsMatch(t, before, s.IDs())
		assert.Equal(t, s.IDs(), persisted(t, b, DefaultKey))
	}
}

func TestStore_EmptySetPersistsAsArray(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s, err := Open(ctx, b, DefaultKey)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, "x"))
	require.NoError(t, s.Remove(ctx, "x"))
	assert.JSONEq(t, `[]`, string(b.data[DefaultKey]))
}

func TestOpen_CorruptDataStartsEmpty(t *testing.T) {
	b := newMemBackend()
	b.data[DefaultKey] = []byte(`{not json`)

	s, err := Open(context.Background(), b, DefaultKey)
	require.NoError(t, err)
	assert.Empty(t, s.IDs())
}

func TestOpen_DropsDuplicates(t *testing.T) {
	b := newMemBackend()
	b.data[DefaultKey] = []byte(`["3","1","3",""]`)

	s, err := Open(context.Background(), b, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, s.IDs())
}

func TestOpen_BackendError(t *testing.T) {
	b := new(mockBackend)
	b.On("Load", mock.Anything, "wishlist:v1").Return(nil, errors.New("connection refused"))

	_, err := Open(context.Background(), b, "wishlist:v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	b.AssertExpectations(t)
}

func TestStore_FailedSaveKeepsMirror(t *testing.T) {
	ctx := context.Background()
	b := new(mockBackend)
	b.On("Load", mock.Anything, DefaultKey).Return([]byte(`["1"]`), nil)
	b.On("Save", mock.Anything, DefaultKey, []byte(`["1","2"]`)).Return(errors.New("disk full")).Once()
	b.On("Save", mock.Anything, DefaultKey, []byte(`[]`)).Return(errors.New("disk full")).Once()

	s, err := Open(ctx, b, DefaultKey)
	require.NoError(t, err)

	err = s.Add(ctx, "2")
	require.Error(t, err)
	assert.Equal(t, []string{"1"}, s.IDs())

	present, err := s.Toggle(ctx, "1")
	require.Error(t, err)
	assert.True(t, present)
	assert.Equal(t, []string{"1"}, s.IDs())

	b.AssertExpectations(t)
}

func TestStore_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s, err := Open(ctx, b, DefaultKey)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Add(ctx, fmt.Sprint(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	assert.ElementsMatch(t, s.IDs(), persisted(t, b, DefaultKey))
}

func TestRegistry_OneStorePerVisitor(t *testing.T) {
	ctx := context.Background()
	b := new(mockBackend)
	b.On("Load", mock.Anything, "wishlist:alice").Return(nil, ErrNotFound).Once()
	b.On("Load", mock.Anything, "wishlist:bob").Return([]byte(`["7"]`), nil).Once()

	r := NewRegistry(b)

	a1, err := r.For(ctx, "alice")
	require.NoError(t, err)
	a2, err := r.For(ctx, "alice")
	require.NoError(t, err)
	assert.Same(t, a1, a2)
	assert.Equal(t, "wishlist:alice", a1.Key())

	bob, err := r.For(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, bob.IDs())

	_, err = r.For(ctx, "")
	assert.ErrorIs(t, err, ErrNoVisitor)

	b.AssertExpectations(t)
}

func TestRegistry_IDsDoesNotCache(t *testing.T) {
	ctx := context.Background()
	b := new(mockBackend)
	b.On("Load", mock.Anything, "wishlist:carol").Return([]byte(`["3","9"]`), nil).Twice()

	r := NewRegistry(b)
	for i := 0; i < 2; i++ {
		ids, err := r.IDs(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "9"}, ids)
	}
	assert.Equal(t, 0, r.Len())

	_, err := r.IDs(ctx, "")
	assert.ErrorIs(t, err, ErrNoVisitor)
	b.AssertExpectations(t)
}

func TestRegistry_IDsPrefersCachedStore(t *testing.T) {
	ctx := context.Background()
	b := new(mockBackend)
	b.On("Load", mock.Anything, "wishlist:dan").Return(nil, ErrNotFound).Once()
	b.On("Save", mock.Anything, "wishlist:dan", []byte(`["4"]`)).Return(nil).Once()

	r := NewRegistry(b)
	s, err := r.For(ctx, "dan")
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "4"))

	ids, err := r.IDs(ctx, "dan")
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids)
	b.AssertExpectations(t)
}

func TestRegistry_EvictIdle(t *testing.T) {
	ctx := context.Background()
	b := new(mockBackend)
	b.On("Load", mock.Anything, mock.Anything).Return(nil, ErrNotFound)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(b)
	r.now = func() time.Time { return now }

	_, err := r.For(ctx, "old")
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	_, err = r.For(ctx, "recent")
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, r.Len())

	// a reading visit keeps a cached store alive
	now = now.Add(10 * time.Minute)
	_, err = r.IDs(ctx, "recent")
	require.NoError(t, err)
	now = now.Add(25 * time.Minute)
	assert.Equal(t, 0, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_JanitorStopsWithContext(t *testing.T) {
	b := new(mockBackend)
	b.On("Load", mock.Anything, mock.Anything).Return(nil, ErrNotFound)

	r := NewRegistry(b)
	_, err := r.For(context.Background(), "ghost")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r.StartJanitor(ctx, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
}
