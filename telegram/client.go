package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/SANATANIxAPI/pic/tool"
)

const defaultAPIBase = "https://api.telegram.org"

// Sentinel errors for Telegram client operations.
var (
	// ErrUnauthorized is returned when the bot token is rejected.
	ErrUnauthorized = errors.New("telegram bot token rejected")
	// ErrRequestFailed is returned when an API call is refused by Telegram.
	ErrRequestFailed = errors.New("telegram request failed")
)

// Client talks to the Telegram Bot API over HTTPS. Long polling uses a
// dedicated HTTP client whose timeout exceeds the poll window.
type Client struct {
	apiBase    string
	token      string
	httpClient *http.Client
	pollClient *http.Client

	pollTimeout int // getUpdates timeout, seconds
}

// New validates the token against getMe and returns a ready client.
func New(token string) (*Client, error) {
	return NewWithAPIBase(token, defaultAPIBase)
}

// NewWithAPIBase creates a client against a custom API base URL. Used by
// tests to point at a local fake.
func NewWithAPIBase(token, apiBase string) (*Client, error) {
	c := &Client{
		apiBase:     apiBase,
		token:       token,
		httpClient:  tool.ConnectionHttpClient,
		pollClient:  tool.LongPollHttpClient,
		pollTimeout: 30,
	}
	var me User
	if err := c.invoke("getMe", nil, &me); err != nil {
		return nil, err
	}
	tool.DefaultLogger.Infof("Connected to Telegram as @%s", me.Username)
	return c, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
}

// invoke POSTs a JSON payload to a Bot API method and decodes the result
// into out. payload and out may be nil.
func (c *Client) invoke(method string, payload any, out any) error {
	return c.invokeWith(c.httpClient, method, payload, out)
}

func (c *Client) invokeWith(client *http.Client, method string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := sonic.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %v", method, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, c.methodURL(method), body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %v", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v", method, err)
	}
	defer resp.Body.Close()
	return c.parseResponse(method, resp, out)
}

func (c *Client) parseResponse(method string, resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %v", method, err)
	}
	var envelope apiResponse
	if err := sonic.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to parse %s response: %v", method, err)
	}
	if !envelope.OK {
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %s: %s", ErrRequestFailed, method, envelope.Description)
	}
	if out != nil && len(envelope.Result) > 0 {
		if err := sonic.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to parse %s result: %v", method, err)
		}
	}
	return nil
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// GetUpdates performs one long poll starting at offset.
func (c *Client) GetUpdates(offset int64) ([]Update, error) {
	var updates []Update
	err := c.invokeWith(c.pollClient, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        c.pollTimeout,
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates)
	return updates, err
}

// Updates long-polls getUpdates and delivers each update in arrival order
// until ctx is cancelled. Poll errors are logged and retried with a short
// backoff so a flaky network never kills the loop.
func (c *Client) Updates(ctx context.Context) <-chan Update {
	ch := make(chan Update)
	go func() {
		defer close(ch)
		var offset int64
		for {
			if ctx.Err() != nil {
				return
			}
			updates, err := c.GetUpdates(offset)
			if err != nil {
				tool.DefaultLogger.Warnf("getUpdates failed: %v", err)
				select {
				case <-time.After(3 * time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}
			for _, u := range updates {
				offset = u.UpdateID + 1
				select {
				case ch <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends text to a chat, optionally with an inline keyboard,
// and returns the sent message.
func (c *Client) SendMessage(chatID int64, text string, markup *InlineKeyboardMarkup) (Message, error) {
	var msg Message
	err := c.invoke("sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}, &msg)
	return msg, err
}

type editMessageTextRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(chatID, messageID int64, text string) error {
	return c.invoke("editMessageText", editMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}, nil)
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// DeleteMessage removes a message the bot sent.
func (c *Client) DeleteMessage(chatID, messageID int64) error {
	return c.invoke("deleteMessage", deleteMessageRequest{ChatID: chatID, MessageID: messageID}, nil)
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// AnswerCallbackQuery acknowledges a button press, optionally with a toast.
func (c *Client) AnswerCallbackQuery(id, text string) error {
	return c.invoke("answerCallbackQuery", answerCallbackRequest{CallbackQueryID: id, Text: text}, nil)
}

// SendPhoto uploads photo bytes to a chat with a caption.
func (c *Client) SendPhoto(chatID int64, name string, photo []byte, caption string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("failed to build sendPhoto form: %v", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to build sendPhoto form: %v", err)
		}
	}
	part, err := writer.CreateFormFile("photo", name)
	if err != nil {
		return fmt.Errorf("failed to build sendPhoto form: %v", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("failed to build sendPhoto form: %v", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build sendPhoto form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.methodURL("sendPhoto"), &body)
	if err != nil {
		return fmt.Errorf("failed to build sendPhoto request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendPhoto: %v", err)
	}
	defer resp.Body.Close()
	return c.parseResponse("sendPhoto", resp, nil)
}

type getFileRequest struct {
	FileID string `json:"file_id"`
}

// DownloadFile resolves a file_id and streams its content to dst.
func (c *Client) DownloadFile(fileID, dst string) error {
	var file File
	if err := c.invoke("getFile", getFileRequest{FileID: fileID}, &file); err != nil {
		return err
	}
	if file.FilePath == "" {
		return fmt.Errorf("%w: getFile returned no path for %s", ErrRequestFailed, fileID)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.apiBase, c.token, file.FilePath)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %v", file.FilePath, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: file download returned status %d", ErrRequestFailed, resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %v", dst, err)
	}
	return nil
}
