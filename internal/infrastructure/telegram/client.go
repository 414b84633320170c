package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

const (
	defaultAPIURL = "https://api.telegram.org"
	maxBodyBytes  = 1 << 20
)

// APIError is a Bot API response with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Client talks to the Telegram Bot API with form-encoded requests.
type Client struct {
	baseURL  string
	botToken string
	client   *http.Client
	poll     *http.Client
}

var _ ports.Messenger = (*Client)(nil)

// NewClient registers the bot token. pollTimeout is the long-poll duration used by Updates.
func NewClient(baseURL, botToken string, pollTimeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		poll:     &http.Client{Timeout: pollTimeout + 10*time.Second},
	}
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type apiChat struct {
	ID int64 `json:"id"`
}

type apiUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type apiMessage struct {
	MessageID int64    `json:"message_id"`
	Chat      apiChat  `json:"chat"`
	From      *apiUser `json:"from"`
	Text      string   `json:"text"`
}

// Update is one entry returned by getUpdates.
type Update struct {
	UpdateID int64       `json:"update_id"`
	Message  *apiMessage `json:"message"`
}

// ToMessage converts a text update; ok is false for anything else.
func (u Update) ToMessage() (domain.Message, bool) {
	if u.Message == nil || u.Message.Text == "" {
		return domain.Message{}, false
	}
	msg := domain.Message{
		ChatID:    u.Message.Chat.ID,
		MessageID: u.Message.MessageID,
		Text:      u.Message.Text,
	}
	if from := u.Message.From; from != nil {
		msg.From = domain.User{ID: from.ID, Username: from.Username, FirstName: from.FirstName, LastName: from.LastName}
	}
	return msg, true
}

type keyboardButton struct {
	Text string `json:"text"`
}

type replyKeyboard struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

// Send posts an HTML message, optionally with a reply keyboard, and returns its id.
func (c *Client) Send(ctx context.Context, chatID int64, text string, keyboard domain.Keyboard) (int64, error) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")
	if len(keyboard) > 0 {
		markup, err := json.Marshal(toReplyKeyboard(keyboard))
		if err != nil {
			return 0, fmt.Errorf("marshal keyboard: %w", err)
		}
		form.Set("reply_markup", string(markup))
	}

	var sent apiMessage
	if err := c.call(ctx, c.client, "sendMessage", form, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a message sent earlier. Editing to the same text is not an error.
func (c *Client) Edit(ctx context.Context, chatID, messageID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	err := c.call(ctx, c.client, "editMessageText", form, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
		return nil
	}
	return err
}

// Typing shows the "typing" chat action.
func (c *Client) Typing(ctx context.Context, chatID int64) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("action", "typing")
	return c.call(ctx, c.client, "sendChatAction", form, nil)
}

// Updates long-polls for message updates starting at offset.
func (c *Client) Updates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(int(timeout/time.Second)))
	form.Set("allowed_updates", `["message"]`)

	var updates []Update
	if err := c.call(ctx, c.poll, "getUpdates", form, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, client *http.Client, method string, form url.Values, result any) error {
	if c.botToken == "" || client == nil {
		return fmt.Errorf("telegram client misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return fmt.Errorf("telegram %s: decode response (%s): %w", method, resp.Status, err)
	}
	if !env.OK {
		code := env.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Method: method, Code: code, Description: env.Description}
	}
	if result == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

func toReplyKeyboard(keyboard domain.Keyboard) replyKeyboard {
	rows := make([][]keyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]keyboardButton, 0, len(row))
		for _, caption := range row {
			buttons = append(buttons, keyboardButton{Text: caption})
		}
		rows = append(rows, buttons)
	}
	return replyKeyboard{Keyboard: rows, ResizeKeyboard: true}
}
