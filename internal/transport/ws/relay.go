package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type AuthSvc interface {
	Identity(token string) (*domain.Identity, error)
}

type UserSvc interface {
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

type MessageSvc interface {
	Create(ctx context.Context, senderID, recipientID domain.UserID, text string) (*domain.Message, error)
}

// Relay — обработчик WS-сессии. Получатель фиксируется путем URL на все
// время сессии: GET /ws/messages/{user_id}?token=...
type Relay struct {
	upgrader websocket.Upgrader
	registry *Registry

	authSvc  AuthSvc
	userSvc  UserSvc
	msgSvc   MessageSvc
	notifier notify.Notifier

	pingEvery      time.Duration
	persistTimeout time.Duration
}

func NewRelay(registry *Registry, auth AuthSvc, users UserSvc, messages MessageSvc, notifier notify.Notifier) *Relay {
	return &Relay{
		registry: registry,
		authSvc:  auth,
		userSvc:  users,
		msgSvc:   messages,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:      15 * time.Second,
		persistTimeout: 5 * time.Second,
	}
}

func (s *Relay) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

func (s *Relay) SetPersistTimeout(d time.Duration) {
	if d > 0 {
		s.persistTimeout = d
	}
}

// HandleWS: авторизация и валидация получателя происходят ДО upgrade —
// неавторизованное подключение не успевает занять ресурсы транспорта.
func (s *Relay) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	identity, err := s.authSvc.Identity(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	rid, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || rid <= 0 {
		http.Error(w, "invalid recipient id", http.StatusBadRequest)
		return
	}
	recipientID := domain.UserID(rid)

	if recipientID == identity.ID {
		http.Error(w, "cannot message yourself", http.StatusBadRequest)
		return
	}
	if _, err := s.userSvc.GetByID(r.Context(), recipientID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "recipient not found", http.StatusNotFound)
			return
		}
		slog.Error("ws resolve recipient failed", "recipient", rid, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	s.registry.Register(identity.ID, c)

	// Снятие записи гарантировано на любом пути завершения сессии.
	defer func() {
		s.registry.Unregister(identity.ID, c)
		if err := c.Close(); err != nil {
			slog.Debug("ws close failed", "user", identity.ID, "err", err)
		}
	}()

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c, identity, recipientID)
}

// readLoop — цикл сообщений: кадры одной сессии обрабатываются строго
// по порядку, следующий кадр не читается, пока не завершится
// persist+fan-out текущего.
func (s *Relay) readLoop(ctx context.Context, c *wsConn, sender *domain.Identity, recipientID domain.UserID) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		s.handleFrame(ctx, sender, recipientID, string(data))
	}
}

// handleFrame — один цикл сообщения: persist, затем fan-out.
// Ошибка персистенции роняет кадр, но не сессию.
func (s *Relay) handleFrame(ctx context.Context, sender *domain.Identity, recipientID domain.UserID, data string) {
	// пустой текст — no-op, кадр молча игнорируется
	text := strings.TrimSpace(data)
	if text == "" {
		return
	}

	pctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	msg, err := s.msgSvc.Create(pctx, sender.ID, recipientID, text)
	cancel()
	if err != nil {
		slog.Warn("ws message save failed",
			"sender", sender.ID, "recipient", recipientID, "err", err)
		return
	}

	s.fanOut(ctx, sender, recipientID, msg)
}

// fanOut: эхо отправителю, доставка получателю если он онлайн,
// иначе — постановка оффлайн-уведомления.
func (s *Relay) fanOut(ctx context.Context, sender *domain.Identity, recipientID domain.UserID, msg *domain.Message) {
	payload := NewPayload(msg.Text, sender.Username, msg.Timestamp)

	if sc, ok := s.registry.Lookup(sender.ID); ok {
		if err := sc.Send(payload); err != nil {
			slog.Debug("ws echo failed", "user", sender.ID, "err", err)
		}
	}

	if rc, ok := s.registry.Lookup(recipientID); ok {
		if err := rc.Send(payload); err != nil {
			slog.Debug("ws deliver failed", "user", recipientID, "err", err)
		}
		return
	}

	// Получатель оффлайн: резолвим его заново — telegram-ссылка могла
	// поменяться за время сессии.
	recipient, err := s.userSvc.GetByID(ctx, recipientID)
	if err != nil {
		slog.Warn("ws resolve offline recipient failed", "recipient", recipientID, "err", err)
		return
	}
	if recipient.TelegramURL == nil {
		return
	}

	s.notifier.Notify(*recipient.TelegramURL, sender.Username, msg.Text)
}

func (s *Relay) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn      *websocket.Conn
	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(p Payload) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(p)
}

// Close безопасен при конкурентных вызовах: закрыть может и своя сессия,
// и Register при вытеснении более новым подключением.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })

	return c.conn.Close()
}
