package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/errs"
	"github.com/cwrk-planet/dm-service/internal/service"
	httpmw "github.com/cwrk-planet/dm-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/dm-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	authSvc *service.AuthService
	userSvc *service.UserService
	msgSvc  *service.MessageService
}

func NewHandler(auth *service.AuthService, users *service.UserService, messages *service.MessageService) *Handler {
	return &Handler{
		authSvc: auth,
		userSvc: users,
		msgSvc:  messages,
	}
}

// POST /api/auth/token
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "username and password are required", nil)
		return
	}

	res, err := h.authSvc.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			httputil.Error(r.Context(), w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		slog.Error("handler.Token:", slog.Any("err", err))
		httputil.Error(r.Context(), w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	httputil.OK(w, TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.authSvc.AccessTTL().Seconds()),
	})
}

// POST /api/users/register — публичная регистрация, роль всегда user.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeCreateUser(w, r)
	if !ok {
		return
	}

	u, err := h.userSvc.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err, "register failed")
		return
	}

	httputil.Created(w, toUserItem(u))
}

// POST /api/users — создание от имени текущего пользователя (admin-роль выдает только админ).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeCreateUser(w, r)
	if !ok {
		return
	}

	u, err := h.userSvc.Create(r.Context(), httpmw.IdentityFromCtx(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err, "create user failed")
		return
	}

	httputil.Created(w, toUserItem(u))
}

// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.List(r.Context(), httpmw.IdentityFromCtx(r.Context()))
	if err != nil {
		h.writeError(w, r, err, "list users failed")
		return
	}

	httputil.OK(w, toUserItems(users))
}

// GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	u, err := h.userSvc.Get(r.Context(), httpmw.IdentityFromCtx(r.Context()), domain.UserID(id))
	if err != nil {
		h.writeError(w, r, err, "get user failed")
		return
	}

	httputil.OK(w, toUserItem(u))
}

// PUT /api/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}

	in := service.UpdateUserInput{
		NewUsername:    req.NewUsername,
		NewEmail:       req.NewEmail,
		NewTelegramURL: req.NewTelegramURL,
		NewPassword:    req.NewPassword,
	}
	if req.NewRole != nil {
		role := domain.ParseRole(*req.NewRole)
		in.NewRole = &role
	}

	u, err := h.userSvc.Update(r.Context(), httpmw.IdentityFromCtx(r.Context()), domain.UserID(id), in)
	if err != nil {
		h.writeError(w, r, err, "update user failed")
		return
	}

	httputil.OK(w, toUserItem(u))
}

// DELETE /api/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userSvc.Delete(r.Context(), httpmw.IdentityFromCtx(r.Context()), domain.UserID(id)); err != nil {
		h.writeError(w, r, err, "delete user failed")
		return
	}

	httputil.NoContent(w)
}

// GET /api/users/contacts — все, с кем текущий пользователь переписывался.
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	identity := httpmw.IdentityFromCtx(r.Context())

	users, err := h.userSvc.Contacts(r.Context(), identity.ID)
	if err != nil {
		h.writeError(w, r, err, "contacts failed")
		return
	}

	httputil.OK(w, toUserItems(users))
}

// GET /api/messages — все диалоги текущего пользователя.
func (h *Handler) Dialog(w http.ResponseWriter, r *http.Request) {
	identity := httpmw.IdentityFromCtx(r.Context())

	msgs, err := h.msgSvc.Dialog(r.Context(), identity.ID)
	if err != nil {
		h.writeError(w, r, err, "dialog failed")
		return
	}

	httputil.OK(w, toMessageItems(msgs))
}

// POST /api/messages — отправка через request/response поверхность.
// Живым подключениям ничего не доставляется: fan-out делает только relay.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	identity := httpmw.IdentityFromCtx(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}

	m, err := h.msgSvc.Create(r.Context(), identity.ID, domain.UserID(req.RecipientID), req.Text)
	if err != nil {
		h.writeError(w, r, err, "send message failed")
		return
	}

	httputil.Created(w, toMessageItem(m))
}

// GET /api/messages/sent — отправленные текущим пользователем.
func (h *Handler) Sent(w http.ResponseWriter, r *http.Request) {
	identity := httpmw.IdentityFromCtx(r.Context())

	msgs, err := h.msgSvc.ListBySender(r.Context(), identity.ID)
	if err != nil {
		h.writeError(w, r, err, "sent failed")
		return
	}

	httputil.OK(w, toMessageItems(msgs))
}

// GET /api/messages/with/{user_id} — история с конкретным пользователем.
func (h *Handler) Between(w http.ResponseWriter, r *http.Request) {
	identity := httpmw.IdentityFromCtx(r.Context())

	other, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	msgs, err := h.msgSvc.Between(r.Context(), identity.ID, domain.UserID(other))
	if err != nil {
		h.writeError(w, r, err, "history failed")
		return
	}

	httputil.OK(w, toMessageItems(msgs))
}

// DELETE /api/messages/{id}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.msgSvc.Delete(r.Context(), httpmw.IdentityFromCtx(r.Context()), domain.MessageID(id)); err != nil {
		h.writeError(w, r, err, "delete message failed")
		return
	}

	httputil.NoContent(w)
}

// ---- helpers ----

func (h *Handler) decodeCreateUser(w http.ResponseWriter, r *http.Request) (service.CreateUserInput, bool) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid JSON", nil)
		return service.CreateUserInput{}, false
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "username, email and password are required", nil)
		return service.CreateUserInput{}, false
	}

	return service.CreateUserInput{
		Username:    strings.TrimSpace(req.Username),
		Email:       strings.TrimSpace(req.Email),
		TelegramURL: req.TelegramURL,
		Password:    req.Password,
		Role:        domain.ParseRole(req.Role),
	}, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid "+param, nil)
		return 0, false
	}

	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := toHTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("handler."+msg, slog.Any("err", err))
		httputil.Error(r.Context(), w, status, "internal error", nil)
		return
	}

	httputil.Error(r.Context(), w, status, msg, map[string]any{"reason": err.Error()})
}

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrSelfMessage),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, errs.ErrPasswordTooShort):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrInvalidToken),
		errors.Is(err, errs.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
