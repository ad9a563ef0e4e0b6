package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/monarchbot/internal/ai"
	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/internal/logger"
	"github.com/example/monarchbot/pkg/models"
)

// ExternalIDPrefix marks identity keys issued for Telegram users
const ExternalIDPrefix = "tg:"

// ExternalID returns the identity key of a Telegram user
func ExternalID(telegramID int64) string {
	return ExternalIDPrefix + strconv.FormatInt(telegramID, 10)
}

// ChatID extracts the Telegram chat from an identity key.
// Private chats share the user's ID.
func ChatID(externalID string) (int64, bool) {
	raw, ok := strings.CutPrefix(externalID, ExternalIDPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

var errNotTelegram = errors.New("profile has no telegram identity")

// Store is the persistence the bot uses beyond the ledger
type Store interface {
	Resolve(ctx context.Context, externalID, name string) (*models.UserProfile, bool, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateGoal(ctx context.Context, userID string, draft models.GoalDraft) (*models.Goal, error)
	UpdateGoalProgress(ctx context.Context, userID, goalID string, progress int) (*models.Goal, error)
	SetGoalStatus(ctx context.Context, userID, goalID string, status models.GoalStatus) (*models.Goal, error)
	AddAchievement(ctx context.Context, userID, title, description, icon string) (*models.Achievement, error)
	SaveConversation(ctx context.Context, userID, message, response string) error
	RecentConversations(ctx context.Context, userID string, limit int) ([]models.Conversation, error)
}

// messenger is the subset of the Telegram API the handlers call
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// conversation states
const (
	stateAwaitingName   = "awaiting_name"
	stateChoosingAreas  = "choosing_areas"
	stateAwaitingImport = "awaiting_import"
)

// UserState represents the current state of a user in conversation with the bot
type UserState struct {
	State     string
	Timestamp time.Time
	Name      string
	Areas     map[string]bool
}

// Deps are the collaborators of the bot
type Deps struct {
	Store  Store
	Ledger *ledger.Ledger
	Coach  *ai.Coach
	Config *BotConfig
}

// Bot represents the Telegram bot application
type Bot struct {
	client *tgbotapi.BotAPI
	api    messenger
	store  Store
	ledger *ledger.Ledger
	coach  *ai.Coach
	config *BotConfig
	log    *logger.Logger
	http   *http.Client
	now    func() time.Time

	mu         sync.Mutex
	userStates map[int64]*UserState
	wg         sync.WaitGroup
}

// New authorizes token against Telegram and creates the bot
func New(token string, d Deps, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is not set")
	}
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	b := newBot(client, d, log)
	b.client = client
	b.log.Info("authorized on telegram", "account", client.Self.UserName)
	return b, nil
}

func newBot(api messenger, d Deps, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.Nop()
	}
	if d.Config == nil {
		d.Config = DefaultConfig()
	}
	return &Bot{
		api:        api,
		store:      d.Store,
		ledger:     d.Ledger,
		coach:      d.Coach,
		config:     d.Config,
		log:        log,
		http:       &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		userStates: make(map[int64]*UserState),
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight handlers
func (b *Bot) Run(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot is not connected")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.client.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.wg.Wait()
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate handles one incoming update from Telegram
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update", "update_id", update.UpdateID, "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		if update.Message.IsCommand() {
			if err := b.HandleCommand(ctx, update.Message); err != nil {
				b.log.Error("command failed", "command", update.Message.Command(), "error", err)
				b.reply(update.Message.Chat.ID, "Something went wrong in the System. Please try again.")
			}
			return
		}
		b.handleMessage(ctx, update.Message)
	}
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(_ context.Context, p *models.UserProfile, openQuests int) error {
	chatID, ok := ChatID(p.ExternalID)
	if !ok {
		return errNotTelegram
	}
	msg := tgbotapi.NewMessage(chatID, reminderText(p, openQuests))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "⚡ Show quests", CallbackData: callbackShowQuests}}})
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send message failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warn("send failed", "error", err)
	}
}

func (b *Bot) state(userID int64) (*UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.userStates[userID]
	if !ok {
		return nil, false
	}
	if b.now().Sub(st.Timestamp) > b.config.StateTTL {
		delete(b.userStates, userID)
		return nil, false
	}
	return st, true
}

func (b *Bot) setState(userID int64, st *UserState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st.Timestamp = b.now()
	b.userStates[userID] = st
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.userStates, userID)
}
