package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/ad/go-telegram-broadcast/internal/db"
	"github.com/ad/go-telegram-broadcast/internal/fsm"
	"github.com/ad/go-telegram-broadcast/internal/models"
	"github.com/ad/go-telegram-broadcast/internal/registry"
	"github.com/ad/go-telegram-broadcast/internal/services"
	"github.com/ad/go-telegram-broadcast/internal/session"
	"github.com/ad/go-telegram-broadcast/internal/telegram"
)

const (
	callbackBroadcast = "broadcast"
	callbackAddPhoto  = "add_photo"
	callbackAddVideo  = "add_video"
	callbackSendNow   = "send_now"
	callbackCancel    = "cancel"
	callbackHistory   = "admin_history"
	callbackBackup    = "admin_backup"
)

const historyLimit = 10

type BroadcastHandler struct {
	courier      telegram.Courier
	directory    *services.AdminDirectory
	registry     *registry.UserRegistry
	sessions     *session.Store
	broadcaster  *services.Broadcaster
	broadcastLog *db.BroadcastLogRepository
	backupMgr    *services.BackupManager
	log          zerolog.Logger
}

func NewBroadcastHandler(
	courier telegram.Courier,
	directory *services.AdminDirectory,
	userRegistry *registry.UserRegistry,
	sessions *session.Store,
	broadcaster *services.Broadcaster,
	broadcastLog *db.BroadcastLogRepository,
	backupMgr *services.BackupManager,
	log zerolog.Logger,
) *BroadcastHandler {
	return &BroadcastHandler{
		courier:      courier,
		directory:    directory,
		registry:     userRegistry,
		sessions:     sessions,
		broadcaster:  broadcaster,
		broadcastLog: broadcastLog,
		backupMgr:    backupMgr,
		log:          log.With().Str("component", "handler").Logger(),
	}
}

// HandleCommand processes slash commands. /start is open to everyone and
// registers the sender; the rest is admin-only and silently ignored for
// other users.
func (h *BroadcastHandler) HandleCommand(ctx context.Context, msg *tgmodels.Message) bool {
	h.registry.Register(msg.From.ID)

	switch msg.Text {
	case "/start":
		h.handleStart(ctx, msg.From.ID, msg.Chat.ID)
		return true
	case "/admin":
		if h.directory.ShouldIgnore(msg.From.ID) {
			return false
		}
		h.showAdminMenu(ctx, msg.Chat.ID)
		return true
	case "/cancel":
		h.handleCancel(ctx, msg.From.ID, msg.Chat.ID)
		return true
	case "/history":
		if h.directory.ShouldIgnore(msg.From.ID) {
			return false
		}
		h.showHistory(ctx, msg.Chat.ID)
		return true
	case "/backup":
		if h.directory.ShouldIgnore(msg.From.ID) {
			return false
		}
		h.handleBackup(ctx, msg.From.ID, msg.Chat.ID)
		return true
	default:
		return false
	}
}

// HandleMessage routes non-command input by the sender's session state.
// Users without an active session only get registered.
func (h *BroadcastHandler) HandleMessage(ctx context.Context, msg *tgmodels.Message) bool {
	h.registry.Register(msg.From.ID)

	sess, ok := h.sessions.Get(msg.From.ID)
	if !ok {
		return false
	}

	switch sess.State {
	case fsm.StateBroadcastEnterText:
		h.handleTextInput(ctx, msg, sess)
		return true
	case fsm.StateBroadcastEnterMedia:
		h.handleMediaInput(ctx, msg, sess)
		return true
	case fsm.StateBroadcastChooseMedia, fsm.StateBroadcastReady:
		// Out-of-sequence input keeps the session and repeats the prompt.
		h.promptSendOptions(ctx, msg.Chat.ID, sess)
		return true
	default:
		h.log.Warn().Int64("user_id", msg.From.ID).Str("state", sess.State).Msg("unknown session state, resetting")
		h.sessions.Clear(msg.From.ID)
		return false
	}
}

func (h *BroadcastHandler) HandleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) bool {
	h.registry.Register(callback.From.ID)

	msg := callback.Message.Message
	if msg == nil {
		return false
	}

	h.courier.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	chatID := msg.Chat.ID
	data := callback.Data

	h.log.Debug().Int64("user_id", callback.From.ID).Str("data", data).Msg("callback received")

	switch data {
	case callbackBroadcast:
		// Non-admins never get a session; the press is a silent no-op.
		if h.directory.ShouldIgnore(callback.From.ID) {
			return false
		}
		h.startBroadcastFlow(ctx, callback.From.ID, chatID)
		return true
	case callbackAddPhoto:
		h.handleMediaChoice(ctx, callback.From.ID, chatID, models.MediaPhoto)
		return true
	case callbackAddVideo:
		h.handleMediaChoice(ctx, callback.From.ID, chatID, models.MediaVideo)
		return true
	case callbackSendNow:
		h.handleSendNow(ctx, callback.From.ID, chatID)
		return true
	case callbackCancel:
		h.handleCancel(ctx, callback.From.ID, chatID)
		return true
	case callbackHistory:
		if h.directory.ShouldIgnore(callback.From.ID) {
			return false
		}
		h.showHistory(ctx, chatID)
		return true
	case callbackBackup:
		if h.directory.ShouldIgnore(callback.From.ID) {
			return false
		}
		h.handleBackup(ctx, callback.From.ID, chatID)
		return true
	default:
		return false
	}
}

func (h *BroadcastHandler) handleStart(ctx context.Context, userID, chatID int64) {
	h.reply(ctx, chatID, "👋 Добро пожаловать!\n\nВы подписаны на сообщения бота.", nil)

	if h.directory.IsAdmin(userID) {
		h.showAdminMenu(ctx, chatID)
	}
}

func (h *BroadcastHandler) showAdminMenu(ctx context.Context, chatID int64) {
	keyboard := &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: "📢 Рассылка всем пользователям", CallbackData: callbackBroadcast},
			},
			{
				{Text: "🕓 История рассылок", CallbackData: callbackHistory},
			},
			{
				{Text: "💾 Бэкап", CallbackData: callbackBackup},
			},
		},
	}

	h.reply(ctx, chatID, "👨‍💻 Панель администратора\n\nДоступные действия:", keyboard)
}

func (h *BroadcastHandler) startBroadcastFlow(ctx context.Context, userID, chatID int64) {
	h.sessions.Save(session.Session{
		UserID: userID,
		State:  fsm.StateBroadcastEnterText,
	})

	keyboard := cancelKeyboard()
	h.reply(ctx, chatID, "📢 Рассылка всем пользователям\n\nВведите текст сообщения.\nДля отмены отправьте /cancel.", keyboard)

	h.log.Info().Int64("user_id", userID).Msg("broadcast flow started")
}

func (h *BroadcastHandler) handleTextInput(ctx context.Context, msg *tgmodels.Message, sess session.Session) {
	if msg.Text == "" {
		h.reply(ctx, msg.Chat.ID, "❌ Пожалуйста, отправьте текст сообщения.", cancelKeyboard())
		return
	}

	sess.Draft.Text = msg.Text
	sess.Draft.Entities = msg.Entities
	sess.State = fsm.StateBroadcastChooseMedia
	h.sessions.Save(sess)

	keyboard := &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: "🖼 Добавить фото", CallbackData: callbackAddPhoto},
			},
			{
				{Text: "🎬 Добавить видео", CallbackData: callbackAddVideo},
			},
			{
				{Text: "▶️ Отправить сейчас", CallbackData: callbackSendNow},
			},
		},
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Текст сохранён\n\nТекст: %s\n\nЧто дальше?", msg.Text), keyboard)
}

func (h *BroadcastHandler) handleMediaChoice(ctx context.Context, userID, chatID int64, kind models.MediaKind) {
	sess, ok := h.sessions.Get(userID)
	if !ok || sess.State != fsm.StateBroadcastChooseMedia {
		return
	}

	sess.Draft.MediaKind = kind
	sess.State = fsm.StateBroadcastEnterMedia
	h.sessions.Save(sess)

	if kind == models.MediaPhoto {
		h.reply(ctx, chatID, "🖼 Отправьте изображение для рассылки.", cancelKeyboard())
	} else {
		h.reply(ctx, chatID, "🎬 Отправьте видео для рассылки.", cancelKeyboard())
	}
}

func (h *BroadcastHandler) handleMediaInput(ctx context.Context, msg *tgmodels.Message, sess session.Session) {
	switch sess.Draft.MediaKind {
	case models.MediaPhoto:
		if len(msg.Photo) == 0 {
			h.reply(ctx, msg.Chat.ID, "❌ Неверный формат. Отправьте изображение.", cancelKeyboard())
			return
		}
		sess.Draft.MediaFileID = msg.Photo[len(msg.Photo)-1].FileID
	case models.MediaVideo:
		if msg.Video == nil {
			h.reply(ctx, msg.Chat.ID, "❌ Неверный формат. Отправьте видео.", cancelKeyboard())
			return
		}
		sess.Draft.MediaFileID = msg.Video.FileID
	default:
		h.log.Warn().Int64("user_id", msg.From.ID).Msg("media input without chosen kind, resetting")
		h.sessions.Clear(msg.From.ID)
		return
	}

	sess.State = fsm.StateBroadcastReady
	h.sessions.Save(sess)

	h.promptSendOptions(ctx, msg.Chat.ID, sess)
}

func (h *BroadcastHandler) promptSendOptions(ctx context.Context, chatID int64, sess session.Session) {
	keyboard := &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: "▶️ Отправить сейчас", CallbackData: callbackSendNow},
			},
			{
				{Text: "❌ Отмена", CallbackData: callbackCancel},
			},
		},
	}

	var text string
	switch sess.Draft.MediaKind {
	case models.MediaPhoto:
		text = "✅ Фото сохранено!\n\nГотовы отправить?"
	case models.MediaVideo:
		text = "✅ Видео сохранено!\n\nГотовы отправить?"
	default:
		text = "✅ Сообщение готово.\n\nГотовы отправить?"
	}

	h.reply(ctx, chatID, text, keyboard)
}

func (h *BroadcastHandler) handleSendNow(ctx context.Context, userID, chatID int64) {
	sess, ok := h.sessions.Get(userID)
	if !ok {
		return
	}

	if sess.State != fsm.StateBroadcastChooseMedia && sess.State != fsm.StateBroadcastReady {
		h.log.Debug().Int64("user_id", userID).Str("state", sess.State).Msg("send_now in wrong state, ignoring")
		return
	}

	if !sess.Draft.ReadyToSend() {
		h.reply(ctx, chatID, "❌ Сообщение ещё не готово к отправке.", nil)
		return
	}

	draft := sess.Draft
	h.sessions.Clear(userID)

	recipients := h.registry.Snapshot()

	h.reply(ctx, chatID, "📢 Рассылка запущена\n\nПодождите...", nil)

	tally := h.broadcaster.Broadcast(ctx, draft, recipients)

	entry := &models.BroadcastLogEntry{
		OperatorID: userID,
		Text:       draft.Text,
		MediaKind:  string(draft.MediaKind),
		Successful: tally.Successful,
		Failed:     tally.Failed,
	}
	if err := h.broadcastLog.Record(entry); err != nil {
		h.log.Warn().Err(err).Msg("failed to record broadcast log entry")
	}

	h.reply(ctx, chatID, fmt.Sprintf("✅ Рассылка завершена\n\nОтправлено: %d\nНе отправлено: %d", tally.Successful, tally.Failed), nil)
}

// handleCancel tears the session down. Cancelling with no active session is
// a silent no-op so repeated /cancel stays idempotent.
func (h *BroadcastHandler) handleCancel(ctx context.Context, userID, chatID int64) {
	if !h.sessions.InProgress(userID) {
		return
	}

	h.sessions.Clear(userID)
	h.reply(ctx, chatID, "❌ Операция отменена.", nil)

	h.log.Info().Int64("user_id", userID).Msg("broadcast flow cancelled")
}

func (h *BroadcastHandler) showHistory(ctx context.Context, chatID int64) {
	entries, err := h.broadcastLog.Recent(historyLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load broadcast history")
		h.reply(ctx, chatID, "❌ Ошибка получения истории рассылок.", nil)
		return
	}

	if len(entries) == 0 {
		h.reply(ctx, chatID, "История рассылок пуста.", nil)
		return
	}

	var b strings.Builder
	b.WriteString("🕓 Последние рассылки:\n")
	for _, entry := range entries {
		text := entry.Text
		if len([]rune(text)) > 40 {
			text = string([]rune(text)[:40]) + "…"
		}
		b.WriteString(fmt.Sprintf("\n%s — %q", entry.CreatedAt.Format("02.01.2006 15:04"), text))
		if entry.MediaKind != "" {
			b.WriteString(" [" + entry.MediaKind + "]")
		}
		b.WriteString(fmt.Sprintf("\nОтправлено: %d, не отправлено: %d\n", entry.Successful, entry.Failed))
	}

	h.reply(ctx, chatID, b.String(), nil)
}

func (h *BroadcastHandler) handleBackup(ctx context.Context, userID, chatID int64) {
	dump, err := h.backupMgr.CreateBackup()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create backup")
		h.reply(ctx, chatID, "❌ Ошибка создания бэкапа.", nil)
		return
	}

	if err := h.backupMgr.SendBackupToAdmin(ctx, userID, dump); err != nil {
		h.log.Error().Err(err).Msg("failed to send backup")
		h.reply(ctx, chatID, "❌ Ошибка отправки бэкапа.", nil)
	}
}

func (h *BroadcastHandler) reply(ctx context.Context, chatID int64, text string, keyboard *tgmodels.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	if _, err := h.courier.SendMessage(ctx, params); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func cancelKeyboard() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: "❌ Отмена", CallbackData: callbackCancel},
			},
		},
	}
}
