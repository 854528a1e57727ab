package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender доставляет уведомление через Telegram Bot API.
// У бота нет прямой связки handle→chat_id, поэтому чат ищется по
// username в getUpdates (так же работал исходный бот).
type TelegramSender struct {
	botToken string
	baseURL  string
	client   *http.Client
}

func NewTelegramSender(botToken string) *TelegramSender {
	return &TelegramSender{
		botToken: botToken,
		baseURL:  telegramAPIBase,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL — для тестов через httptest.
func (s *TelegramSender) SetBaseURL(u string) { s.baseURL = strings.TrimRight(u, "/") }

type tgUpdatesResponse struct {
	OK     bool `json:"ok"`
	Result []struct {
		Message struct {
			Chat struct {
				ID       int64  `json:"id"`
				Username string `json:"username"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"result"`
}

func (s *TelegramSender) Send(ctx context.Context, t *Task) error {
	chatID, ok, err := s.resolveChatID(ctx, t.TelegramURL)
	if err != nil {
		return err
	}
	if !ok {
		// пользователь еще не писал боту — уведомить некуда
		return fmt.Errorf("chat for %q not found in bot updates", t.TelegramURL)
	}

	text := fmt.Sprintf("Пользователь %s отправил вам сообщение:\n%s", t.SenderName, t.Text)

	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.methodURL("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// resolveChatID ищет chat_id по суффиксу telegram-ссылки (t.me/<username>).
func (s *TelegramSender) resolveChatID(ctx context.Context, telegramURL string) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL("getUpdates"), nil)
	if err != nil {
		return 0, false, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	var updates tgUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&updates); err != nil {
		return 0, false, fmt.Errorf("getUpdates: decode: %w", err)
	}
	if !updates.OK {
		return 0, false, fmt.Errorf("getUpdates: not ok")
	}

	for _, upd := range updates.Result {
		username := upd.Message.Chat.Username
		if username != "" && strings.HasSuffix(telegramURL, username) {
			return upd.Message.Chat.ID, true, nil
		}
	}

	return 0, false, nil
}

func (s *TelegramSender) methodURL(method string) string {
	return s.baseURL + "/bot" + s.botToken + "/" + method
}
