// Package telegram is a minimal Bot API client: long-poll updates, text
// messages, and media groups. It speaks to the HTTP API directly; the bot's
// needs are small enough that a full framework buys nothing.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Update is one long-poll result.
type Update struct {
	UpdateID int64   `json:"update_id"`
	Message  Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      User   `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User identifies a message sender.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Photo is one media-group entry. Only the first photo's caption is shown
// by Telegram clients.
type Photo struct {
	Data    []byte
	Caption string
}

// Client calls the Bot API for a single bot token.
type Client struct {
	Token      string
	HTTPClient *http.Client
	// BaseURL overrides the API origin for tests.
	BaseURL string
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultAPIBase
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 65 * time.Second}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.base(), c.Token, method)
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeAPIResponse(resp, result)
}

func decodeAPIResponse(resp *http.Response, result any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return fmt.Errorf("telegram response: %w", err)
	}
	if !api.OK {
		return fmt.Errorf("telegram API error: %s", api.Description)
	}
	if result != nil {
		return json.Unmarshal(api.Result, result)
	}
	return nil
}

// GetUpdates long-polls for updates after offset. timeout is the server
// hold time in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": timeout,
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends plain text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// SendMediaGroup sends up to ten photos as one album. Photos are attached
// as multipart files referenced from the media JSON.
func (c *Client) SendMediaGroup(ctx context.Context, chatID int64, photos []Photo) error {
	if len(photos) == 0 {
		return nil
	}
	if len(photos) > 10 {
		return fmt.Errorf("media group limited to 10 photos, got %d", len(photos))
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	media := make([]map[string]any, 0, len(photos))
	for i, p := range photos {
		name := fmt.Sprintf("photo_%d", i)
		entry := map[string]any{
			"type":  "photo",
			"media": "attach://" + name,
		}
		if p.Caption != "" {
			entry["caption"] = p.Caption
		}
		media = append(media, entry)

		part, err := w.CreateFormFile(name, name+".jpg")
		if err != nil {
			return err
		}
		if _, err := part.Write(p.Data); err != nil {
			return err
		}
	}

	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return err
	}
	if err := w.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return err
	}
	if err := w.WriteField("media", string(mediaJSON)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMediaGroup"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeAPIResponse(resp, nil)
}
