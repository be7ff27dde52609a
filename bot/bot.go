package bot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SANATANIxAPI/pic/enhance"
	"github.com/SANATANIxAPI/pic/telegram"
	"github.com/SANATANIxAPI/pic/tool"
	"github.com/SANATANIxAPI/pic/types"
)

const (
	callbackPrefix = "quality_"

	promptText  = "Please select enhancement quality:"
	expiredText = "Session expired. Please send the image again."
	failedText  = "Sorry, there was an error processing your image."

	startText = "Send me a photo and I'll enhance it. " +
		"You pick the quality tier, I do the rest. Use /help for the tier list."
	helpText = "Upload a photo, then choose a tier:\n" +
		"Low - smaller image, quick to share\n" +
		"Medium - light detail enhancement\n" +
		"High - stronger detail enhancement with edge smoothing\n" +
		"Ultra - denoise first, then enhance\n" +
		"4K Upscale - 4x super-resolution upscaling"
)

// Chat is the transport the bot drives: update delivery in, send primitives
// out. *telegram.Client implements it; tests substitute a recorder.
type Chat interface {
	Updates(ctx context.Context) <-chan telegram.Update
	SendMessage(chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (telegram.Message, error)
	EditMessageText(chatID, messageID int64, text string) error
	DeleteMessage(chatID, messageID int64) error
	AnswerCallbackQuery(id, text string) error
	SendPhoto(chatID int64, name string, photo []byte, caption string) error
	DownloadFile(fileID, dst string) error
}

// Bot runs the per-user enhancement workflow: photo upload creates a
// session, a tier button consumes it, and the session plus its temp file are
// destroyed when the processing attempt finishes, success or not.
type Bot struct {
	chat     Chat
	pipeline *enhance.Pipeline
	sessions *SessionStore
	tempDir  string
	ttl      time.Duration
}

func New(chat Chat, pipeline *enhance.Pipeline, sessions *SessionStore, tempDir string, ttl time.Duration) *Bot {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Bot{
		chat:     chat,
		pipeline: pipeline,
		sessions: sessions,
		tempDir:  tempDir,
		ttl:      ttl,
	}
}

// Run dispatches updates until ctx is cancelled. Each update is handled on
// its own goroutine so one user's slow download or inference never stalls
// another user's flow.
func (b *Bot) Run(ctx context.Context) {
	go b.sweepLoop(ctx)
	for update := range b.chat.Updates(ctx) {
		switch {
		case update.CallbackQuery != nil:
			go b.handleCallback(*update.CallbackQuery)
		case update.Message != nil && len(update.Message.Photo) > 0:
			go b.handlePhoto(*update.Message)
		case update.Message != nil && strings.HasPrefix(update.Message.Text, "/"):
			go b.handleCommand(*update.Message)
		}
	}
}

// sweepLoop reclaims temp files whose sessions the TTL cache already
// evicted. The grace period keeps it from racing an in-flight processing
// attempt that consumed a session right before its deadline.
func (b *Bot) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(b.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tool.SweepTempDir(b.tempDir, b.ttl+time.Minute)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) handlePhoto(msg telegram.Message) {
	userID := msg.Chat.ID
	if msg.From != nil {
		userID = msg.From.ID
	}

	path, err := tool.TempImagePath(b.tempDir)
	if err != nil {
		tool.DefaultLogger.Errorf("Failed to allocate temp file for user %d: %v", userID, err)
		b.notify(msg.Chat.ID, failedText)
		return
	}

	// Telegram orders photo sizes small to large; take the largest.
	photo := msg.Photo[len(msg.Photo)-1]
	if err := b.chat.DownloadFile(photo.FileID, path); err != nil {
		tool.DefaultLogger.Errorf("Failed to download photo for user %d: %v", userID, err)
		tool.RemoveIfExists(path)
		b.notify(msg.Chat.ID, failedText)
		return
	}

	prompt, err := b.chat.SendMessage(msg.Chat.ID, promptText, tierKeyboard())
	if err != nil {
		tool.DefaultLogger.Errorf("Failed to send tier prompt to user %d: %v", userID, err)
		tool.RemoveIfExists(path)
		return
	}

	b.sessions.Create(types.Session{
		UserID:          userID,
		ChatID:          msg.Chat.ID,
		Path:            path,
		PromptMessageID: prompt.MessageID,
		CreatedAt:       time.Now(),
	})
	tool.DefaultLogger.Infof("[Bot] Stored upload for user %d, awaiting tier choice", userID)
}

func (b *Bot) handleCallback(cq telegram.CallbackQuery) {
	tier := types.ParseTier(strings.TrimPrefix(cq.Data, callbackPrefix))

	sess, ok := b.sessions.Consume(cq.From.ID)
	if !ok {
		// Stale or duplicate button press; nothing to clean up.
		if err := b.chat.AnswerCallbackQuery(cq.ID, expiredText); err != nil {
			tool.DefaultLogger.Warnf("Failed to answer stale callback: %v", err)
		}
		return
	}
	defer tool.RemoveIfExists(sess.Path)

	if err := b.chat.AnswerCallbackQuery(cq.ID, ""); err != nil {
		tool.DefaultLogger.Warnf("Failed to answer callback for user %d: %v", sess.UserID, err)
	}
	tool.DefaultLogger.Infof("[Bot] Processing %s enhancement for user %d", tier, sess.UserID)

	data, err := os.ReadFile(sess.Path)
	if err != nil {
		tool.DefaultLogger.Errorf("Failed to read upload for user %d: %v", sess.UserID, err)
		b.reportFailure(sess)
		return
	}

	out, err := b.pipeline.Process(data, tier, "jpg")
	if err != nil {
		tool.DefaultLogger.Errorf("Enhancement failed for user %d (tier %s): %v", sess.UserID, tier, err)
		b.reportFailure(sess)
		return
	}

	caption := fmt.Sprintf("Here's your %s quality enhanced image!", tier)
	name := fmt.Sprintf("enhanced_%s.jpg", tier)
	if err := b.chat.SendPhoto(sess.ChatID, name, out, caption); err != nil {
		tool.DefaultLogger.Errorf("Failed to deliver result to user %d: %v", sess.UserID, err)
		b.reportFailure(sess)
		return
	}
	if sess.PromptMessageID != 0 {
		if err := b.chat.DeleteMessage(sess.ChatID, sess.PromptMessageID); err != nil {
			tool.DefaultLogger.Warnf("Failed to delete prompt for user %d: %v", sess.UserID, err)
		}
	}
}

func (b *Bot) handleCommand(msg telegram.Message) {
	cmd := strings.Fields(msg.Text)[0]
	// Group chats append "@botname" to commands.
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/start":
		b.notify(msg.Chat.ID, startText)
	case "/help":
		b.notify(msg.Chat.ID, helpText)
	}
}

// reportFailure edits the tier prompt into an error notice, falling back to
// a fresh message when the prompt is gone.
func (b *Bot) reportFailure(sess types.Session) {
	if sess.PromptMessageID != 0 {
		if err := b.chat.EditMessageText(sess.ChatID, sess.PromptMessageID, failedText); err == nil {
			return
		}
	}
	b.notify(sess.ChatID, failedText)
}

func (b *Bot) notify(chatID int64, text string) {
	if _, err := b.chat.SendMessage(chatID, text, nil); err != nil {
		tool.DefaultLogger.Warnf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func tierKeyboard() *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	var row []telegram.InlineKeyboardButton
	for _, t := range types.Tiers() {
		row = append(row, telegram.InlineKeyboardButton{
			Text:         t.Label(),
			CallbackData: callbackPrefix + string(t),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
