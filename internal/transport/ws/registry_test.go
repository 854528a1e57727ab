package ws

import (
	"sync"
	"testing"

	"github.com/cwrk-planet/dm-service/internal/domain"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	payloads []Payload
	closed   int
	sendErr  error
}

func (c *fakeConn) Send(p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.payloads = append(c.payloads, p)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeConn) sent() []Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Payload, len(c.payloads))
	copy(out, c.payloads)
	return out
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}

	_, ok := r.Lookup(1)
	require.False(t, ok)

	r.Register(1, c)
	got, ok := r.Lookup(1)
	require.True(t, ok)
	require.Same(t, c, got.(*fakeConn))
	require.Equal(t, 1, r.Len())
}

func TestRegistry_SupersedeClosesPrevious(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	fresh := &fakeConn{}

	r.Register(7, old)
	r.Register(7, fresh)

	// запись указывает на новое подключение, старое закрыто
	got, ok := r.Lookup(7)
	require.True(t, ok)
	require.Same(t, fresh, got.(*fakeConn))
	require.Equal(t, 1, old.closeCount())
	require.Equal(t, 0, fresh.closeCount())
	require.Equal(t, 1, r.Len())
}

func TestRegistry_RegisterSameConnTwice(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}

	r.Register(3, c)
	r.Register(3, c)

	// повторная регистрация того же подключения не закрывает его
	require.Equal(t, 0, c.closeCount())
	require.Equal(t, 1, r.Len())
}

func TestRegistry_UnregisterOnlyOwnEntry(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	fresh := &fakeConn{}

	r.Register(7, old)
	r.Register(7, fresh)

	// cleanup вытесненной сессии не должен снять запись новой
	r.Unregister(7, old)
	got, ok := r.Lookup(7)
	require.True(t, ok)
	require.Same(t, fresh, got.(*fakeConn))

	r.Unregister(7, fresh)
	_, ok = r.Lookup(7)
	require.False(t, ok)
	require.Equal(t, 0, r.Len())
}

func TestRegistry_UnregisterUnknownUser(t *testing.T) {
	r := NewRegistry()
	require.NotPanics(t, func() { r.Unregister(99, &fakeConn{}) })
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			r.Register(domain.UserID(id%5), &fakeConn{})
		}(int64(i))
	}
	wg.Wait()

	require.Equal(t, 5, r.Len())
}
