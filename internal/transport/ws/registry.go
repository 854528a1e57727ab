package ws

import (
	"sync"

	"github.com/cwrk-planet/dm-service/internal/domain"
)

// Conn — живое подключение пользователя.
type Conn interface {
	Send(p Payload) error
	Close() error
}

// Registry — единственный источник правды о том, кто сейчас доступен
// внутри процесса. Под локом только операции с map, никакого I/O.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.UserID]Conn)}
}

// Register безусловно перезаписывает запись пользователя. Вытесненное
// подключение закрывается (вне лока), чтобы не утекали ресурсы транспорта.
func (r *Registry) Register(userID domain.UserID, c Conn) {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = c
	r.mu.Unlock()

	if prev != nil && prev != c {
		_ = prev.Close()
	}
}

// Lookup — чистое чтение, не блокируется и не ошибается.
func (r *Registry) Lookup(userID domain.UserID) (Conn, bool) {
	r.mu.RLock()
	c, ok := r.conns[userID]
	r.mu.RUnlock()

	return c, ok
}

// Unregister снимает запись, только если она все еще принадлежит c:
// сессия, вытесненная более новым подключением, не должна удалить чужую запись.
func (r *Registry) Unregister(userID domain.UserID, c Conn) {
	r.mu.Lock()
	if cur, ok := r.conns[userID]; ok && cur == c {
		delete(r.conns, userID)
	}
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
